package tools

import (
	"image"
	"math"

	"LocalBoard/internal/geom"
)

const (
	// SpeedWindow is the number of samples in the rolling speed average.
	SpeedWindow = 10
	// MaxSpeedSample caps a single |dx|+|dy| speed sample.
	MaxSpeedSample = 100
)

// Pointer is the press/drag/release state machine shared by every tool.
type Pointer struct {
	bounds     image.Rectangle
	trackSpeed bool

	dragging bool
	last     geom.Point
	origin   geom.Point

	samples [SpeedWindow]float64
	count   int
	next    int
	sum     float64
}

// NewPointer creates a pointer that only accepts presses inside bounds.
func NewPointer(bounds image.Rectangle, trackSpeed bool) *Pointer {
	return &Pointer{bounds: bounds, trackSpeed: trackSpeed}
}

// Down starts a drag. Presses outside the surface are ignored and
// reported as false.
func (p *Pointer) Down(pos geom.Point) bool {
	if !pos.In(p.bounds) {
		return false
	}
	p.dragging = true
	p.last = pos
	p.origin = pos
	p.resetSpeed()
	return true
}

// Move records a new position, sampling speed while dragging.
func (p *Pointer) Move(pos geom.Point) {
	if p.trackSpeed && p.dragging {
		p.pushSpeed(math.Min(geom.Manhattan(p.last, pos), MaxSpeedSample))
	}
	p.last = pos
}

// Up ends the drag.
func (p *Pointer) Up() {
	p.dragging = false
	p.resetSpeed()
}

// Blur ends the drag when focus leaves the surface. Unlike Up it never
// leads to a command.
func (p *Pointer) Blur() {
	p.dragging = false
}

func (p *Pointer) IsDragging() bool         { return p.dragging }
func (p *Pointer) LastPosition() geom.Point { return p.last }
func (p *Pointer) ClickOrigin() geom.Point  { return p.origin }

// AverageSpeed is the mean of the current speed window.
func (p *Pointer) AverageSpeed() float64 {
	if p.count == 0 {
		return 0
	}
	return p.sum / float64(p.count)
}

func (p *Pointer) pushSpeed(v float64) {
	if p.count == SpeedWindow {
		p.sum -= p.samples[p.next]
	} else {
		p.count++
	}
	p.samples[p.next] = v
	p.sum += v
	p.next = (p.next + 1) % SpeedWindow
}

func (p *Pointer) resetSpeed() {
	p.samples = [SpeedWindow]float64{}
	p.count, p.next, p.sum = 0, 0, 0
}
