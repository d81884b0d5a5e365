package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	boarddraw "LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
)

// Layer is one RGBA buffer of a Surface. Primitives take the surface lock,
// so a Layer must not be used from inside Edit.
type Layer struct {
	mu  *sync.RWMutex
	img *image.RGBA
}

var _ boarddraw.Layer = (*Layer)(nil)

// Drawing limits. Commands may come from peers or a stored history, so
// coordinates, stroke widths, ellipse radii and font sizes are clamped
// before anything is rasterised.
const (
	maxThickness  = 100
	maxFontSize   = 1024
	maxCoordinate = 1 << 24
)

func (l *Layer) Bounds() image.Rectangle { return l.img.Bounds() }

// Edit runs fn with exclusive access to the pixels.
func (l *Layer) Edit(fn func(img *image.RGBA)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.img)
}

func (l *Layer) StrokeLine(from, to geom.Point, c color.RGBA, width float64, roundCap bool) {
	l.Edit(func(img *image.RGBA) {
		drawLine(img, pixel(from), pixel(to), c, thickness(width), roundCap)
	})
}

func (l *Layer) StrokeRect(r image.Rectangle, c color.RGBA, width float64) {
	r = r.Canon()
	thick := thickness(width)
	corners := [4]image.Point{r.Min, {r.Max.X, r.Min.Y}, r.Max, {r.Min.X, r.Max.Y}}
	l.Edit(func(img *image.RGBA) {
		for i := range corners {
			drawLine(img, corners[i], corners[(i+1)%4], c, thick, false)
		}
	})
}

func (l *Layer) FillRect(r image.Rectangle, c color.RGBA) {
	l.Edit(func(img *image.RGBA) {
		draw.Draw(img, r.Canon().Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
	})
}

func (l *Layer) StrokeEllipse(center geom.Point, rx, ry float64, c color.RGBA, width float64) {
	l.Edit(func(img *image.RGBA) {
		b := img.Bounds()
		drawEllipse(img, pixel(center), radius(rx, b), radius(ry, b), c, thickness(width))
	})
}

func (l *Layer) FillEllipse(center geom.Point, rx, ry float64, c color.RGBA) {
	l.Edit(func(img *image.RGBA) {
		b := img.Bounds()
		drawFilledEllipse(img, pixel(center), radius(rx, b), radius(ry, b), c)
	})
}

func (l *Layer) DrawText(at geom.Point, text string, style boarddraw.TextStyle) error {
	face, err := faceFor(style.Font, style.Size)
	if err != nil {
		return err
	}
	l.Edit(func(img *image.RGBA) {
		drawText(img, pixel(at), text, face, style)
	})
	return nil
}

func (l *Layer) DrawImage(src image.Image, r image.Rectangle) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	l.Edit(func(img *image.RGBA) {
		xdraw.ApproxBiLinear.Scale(img, r, src, src.Bounds(), xdraw.Over, nil)
	})
}

func thickness(width float64) int {
	if math.IsNaN(width) || width < 1 {
		return 1
	}
	return int(math.Round(math.Min(width, maxThickness)))
}

// pixel rounds p to a pixel, clamping far away coordinates.
func pixel(p geom.Point) image.Point {
	return geom.Pt(coordinate(p.X), coordinate(p.Y)).Image()
}

func coordinate(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return geom.Clamp(v, -maxCoordinate, maxCoordinate)
}

// radius caps an ellipse radius at a few canvas extents.
func radius(v float64, b image.Rectangle) int {
	if math.IsNaN(v) {
		return 0
	}
	limit := float64(4 * max(b.Dx(), b.Dy()))
	return int(math.Round(math.Min(math.Abs(v), limit)))
}

func stamp(img *image.RGBA, x, y, thick int, c color.RGBA, round bool) {
	if thick <= 1 {
		if image.Pt(x, y).In(img.Bounds()) {
			img.SetRGBA(x, y, c)
		}
		return
	}
	r := thick / 2
	area := image.Rect(x-r, y-r, x+r+1, y+r+1).Intersect(img.Bounds())
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			dx, dy := px-x, py-y
			if round && dx*dx+dy*dy > r*r {
				continue
			}
			img.SetRGBA(px, py, c)
		}
	}
}

// clipSegment clips a-b to r (Liang-Barsky) and reports whether any of it
// lies inside. A segment already inside r is returned unchanged.
func clipSegment(a, b image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	if r.Empty() {
		return a, b, false
	}
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, ax - float64(r.Min.X)},
		{dx, float64(r.Max.X-1) - ax},
		{-dy, ay - float64(r.Min.Y)},
		{dy, float64(r.Max.Y-1) - ay},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	if t0 > 0 {
		a = image.Pt(int(math.Round(ax+t0*dx)), int(math.Round(ay+t0*dy)))
	}
	if t1 < 1 {
		b = image.Pt(int(math.Round(ax+t1*dx)), int(math.Round(ay+t1*dy)))
	}
	return a, b, true
}

// drawLine walks only the part of p0-p1 that can touch the image.
func drawLine(img *image.RGBA, p0, p1 image.Point, c color.RGBA, thick int, round bool) {
	p0, p1, ok := clipSegment(p0, p1, img.Bounds().Inset(-(thick/2 + 1)))
	if !ok {
		return
	}
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		stamp(img, x0, y0, thick, c, round)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawEllipse(img *image.RGBA, center image.Point, rx, ry int, c color.RGBA, thick int) {
	pad := thick/2 + 1
	box := image.Rect(center.X-rx-pad, center.Y-ry-pad, center.X+rx+pad+1, center.Y+ry+pad+1)
	if !box.Overlaps(img.Bounds()) {
		return
	}
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var prev image.Point
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		p := image.Pt(
			center.X+int(math.Round(math.Cos(angle)*float64(rx))),
			center.Y+int(math.Round(math.Sin(angle)*float64(ry))),
		)
		if i > 0 {
			drawLine(img, prev, p, c, thick, false)
		} else {
			stamp(img, p.X, p.Y, thick, c, false)
		}
		prev = p
	}
}

func drawFilledEllipse(img *image.RGBA, center image.Point, rx, ry int, c color.RGBA) {
	if ry == 0 {
		drawLine(img, image.Pt(center.X-rx, center.Y), image.Pt(center.X+rx, center.Y), c, 1, false)
		return
	}
	b := img.Bounds()
	for dy := max(-ry, b.Min.Y-center.Y); dy <= min(ry, b.Max.Y-1-center.Y); dy++ {
		span := int(float64(rx) * math.Sqrt(1.0-float64(dy*dy)/float64(ry*ry)))
		for dx := max(-span, b.Min.X-center.X); dx <= min(span, b.Max.X-1-center.X); dx++ {
			img.SetRGBA(center.X+dx, center.Y+dy, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
