package draw

import (
	"image"
	"image/color"

	"LocalBoard/internal/geom"
)

// LocalOwner is the preview layer owner for the local user's own tools.
const LocalOwner = ""

// Layer is one raster target the draw routines render into.
type Layer interface {
	Bounds() image.Rectangle
	StrokeLine(from, to geom.Point, c color.RGBA, width float64, roundCap bool)
	StrokeRect(r image.Rectangle, c color.RGBA, width float64)
	FillRect(r image.Rectangle, c color.RGBA)
	StrokeEllipse(center geom.Point, rx, ry float64, c color.RGBA, width float64)
	FillEllipse(center geom.Point, rx, ry float64, c color.RGBA)
	DrawText(at geom.Point, text string, style TextStyle) error
	DrawImage(img image.Image, r image.Rectangle)
	// Edit runs fn with exclusive access to the layer's pixels.
	Edit(fn func(img *image.RGBA))
}

// Surface is the drawing target: one committed layer plus a preview layer
// per owner (the local user and every remote peer).
type Surface interface {
	Committed() Layer
	Preview(owner string) Layer
	Clear()
	ClearPreview(owner string)
}

// TextStyle describes how DrawText renders a string.
type TextStyle struct {
	Font  string
	Size  float64
	Align string
	Color color.RGBA
}
