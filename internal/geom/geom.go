// Package geom holds the stateless geometry and pixel helpers shared by the
// tools, the draw routines and the raster surface.
package geom

import (
	"image"
	"math"
)

// Point is a position on the canvas in surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Image rounds p to the nearest pixel.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// In reports whether p lies inside r.
func (p Point) In(r image.Rectangle) bool {
	return p.X >= float64(r.Min.X) && p.X < float64(r.Max.X) &&
		p.Y >= float64(r.Min.Y) && p.Y < float64(r.Max.Y)
}

// Distance is the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Manhattan is |dx| + |dy| between a and b, the pointer speed sample.
func Manhattan(a, b Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}

// SnapAngle rotates end around start onto the nearest multiple of stepDeg,
// keeping the segment length.
func SnapAngle(start, end Point, stepDeg float64) Point {
	if stepDeg <= 0 {
		return end
	}
	d := end.Sub(start)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return end
	}
	step := stepDeg * math.Pi / 180
	angle := math.Round(math.Atan2(d.Y, d.X)/step) * step
	return Point{
		X: start.X + roundTo(length*math.Cos(angle), 1e-9),
		Y: start.Y + roundTo(length*math.Sin(angle), 1e-9),
	}
}

// roundTo strips floating point noise such as cos(pi/2) != 0.
func roundTo(v, eps float64) float64 {
	if math.Abs(v) < eps {
		return 0
	}
	return v
}

// SquareDimensions forces width and height to the larger magnitude while
// keeping the drag direction of each axis.
func SquareDimensions(width, height float64) (float64, float64) {
	side := math.Max(math.Abs(width), math.Abs(height))
	return math.Copysign(side, width), math.Copysign(side, height)
}

// CircleRadius returns the radius used when an ellipse is forced round.
func CircleRadius(radiusX, radiusY float64) float64 {
	return math.Max(math.Abs(radiusX), math.Abs(radiusY))
}

// PreservedDimensions shrinks one side of the (width, height) box so that
// it matches aspect (width/height), keeping the drag direction.
func PreservedDimensions(width, height, aspect float64) (float64, float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return width, height
	}
	w, h := math.Abs(width), math.Abs(height)
	if h == 0 || w/h > aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	return math.Copysign(w, width), math.Copysign(h, height)
}

// Rect builds the pixel rectangle spanned by origin and origin+size.
// Negative sizes are normalised.
func Rect(origin Point, width, height float64) image.Rectangle {
	a := origin.Image()
	b := Point{X: origin.X + width, Y: origin.Y + height}.Image()
	return image.Rectangle{Min: a, Max: b}.Canon()
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
