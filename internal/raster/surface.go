// Package raster implements the board surface on image.RGBA buffers: one
// committed layer and one transparent preview layer per owner.
package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"sync"

	boarddraw "LocalBoard/internal/draw"
)

// ErrNoSurface is returned when the surface cannot be created.
var ErrNoSurface = errors.New("raster: surface needs a positive size")

// Background is the colour of a cleared committed layer.
var Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Surface is safe for concurrent use: the UI composites it from its render
// loop while the board draws into it.
type Surface struct {
	mu        sync.RWMutex
	bounds    image.Rectangle
	committed *Layer
	previews  map[string]*Layer
}

var _ boarddraw.Surface = (*Surface)(nil)

// New creates a cleared surface of the given size.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoSurface
	}
	s := &Surface{
		bounds:   image.Rect(0, 0, width, height),
		previews: make(map[string]*Layer),
	}
	s.committed = s.newLayer()
	s.Clear()
	return s, nil
}

func (s *Surface) newLayer() *Layer {
	return &Layer{mu: &s.mu, img: image.NewRGBA(s.bounds)}
}

// Bounds is the drawable area in surface pixels.
func (s *Surface) Bounds() image.Rectangle { return s.bounds }

// Committed returns the authoritative layer.
func (s *Surface) Committed() boarddraw.Layer { return s.committed }

// Preview returns the scratch layer of owner, creating it on first use.
func (s *Surface) Preview(owner string) boarddraw.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.previews[owner]
	if !ok {
		l = s.newLayer()
		s.previews[owner] = l
	}
	return l
}

// Clear wipes the committed layer back to the background colour.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.committed.img, s.bounds, image.NewUniform(Background), image.Point{}, draw.Src)
}

// ClearPreview makes owner's preview layer fully transparent.
func (s *Surface) ClearPreview(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.previews[owner]; ok {
		clear(l.img.Pix)
	}
}

// RemovePreview drops owner's preview layer entirely.
func (s *Surface) RemovePreview(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, owner)
}

// Snapshot copies the committed layer.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.bounds)
	copy(out.Pix, s.committed.img.Pix)
	return out
}

// Composite renders the committed layer with every preview layer on top,
// in owner order so the result does not depend on map iteration.
func (s *Surface) Composite() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.bounds)
	copy(out.Pix, s.committed.img.Pix)
	owners := make([]string, 0, len(s.previews))
	for owner := range s.previews {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		draw.Draw(out, s.bounds, s.previews[owner].img, s.bounds.Min, draw.Over)
	}
	return out
}
