package draw

import (
	"image"
	"image/color"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// Fill flood fills the region of l around at with attrs.FillColor and
// returns the number of pixels it changed. It is an iterative depth-first
// walk with a visited bitmap, so it terminates on any input.
func Fill(l Layer, at geom.Point, attrs state.FillAttributes) (int, error) {
	fill := geom.ParseHexOrBlack(attrs.FillColor)
	var changed int
	l.Edit(func(img *image.RGBA) {
		changed = floodFill(img, at.Image(), fill, attrs.Tolerance, attrs.Diagonal)
	})
	return changed, nil
}

func floodFill(img *image.RGBA, start image.Point, fill color.RGBA, tolerance int, diagonal bool) int {
	b := img.Bounds()
	if !start.In(b) {
		return 0
	}
	target := img.RGBAAt(start.X, start.Y)
	if target == fill {
		return 0
	}
	matches := func(c color.RGBA) bool {
		if tolerance > 0 {
			return geom.ColorDistance(c, target) <= tolerance
		}
		return geom.Pack(c) == geom.Pack(target)
	}

	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)
	stack := []image.Point{start}
	visited[geom.Offset(start.X-b.Min.X, start.Y-b.Min.Y, w)] = true
	var next []image.Point
	changed := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		img.SetRGBA(p.X, p.Y, fill)
		changed++
		next = geom.Neighbours(next[:0], p, diagonal)
		for _, n := range next {
			x, y := n.X-b.Min.X, n.Y-b.Min.Y
			if !geom.ValidPixel(x, y, w, h) {
				continue
			}
			i := geom.Offset(x, y, w)
			if visited[i] || !matches(img.RGBAAt(n.X, n.Y)) {
				continue
			}
			visited[i] = true
			stack = append(stack, n)
		}
	}
	return changed
}
