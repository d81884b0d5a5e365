package raster

import (
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	boarddraw "LocalBoard/internal/draw"
	"LocalBoard/internal/state"
)

// DefaultFontSize is used when a text command carries no usable size.
const DefaultFontSize = 12

var (
	fontsOnce sync.Once
	fonts     map[string]*opentype.Font
	fontsErr  error

	faces sync.Map // map[faceKey]font.Face
)

type faceKey struct {
	family string
	size   float64
}

func loadFonts() {
	fonts = make(map[string]*opentype.Font, 3)
	for family, ttf := range map[string][]byte{
		state.FontSerif:     gomedium.TTF,
		state.FontSansSerif: goregular.TTF,
		state.FontMonospace: gomono.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse %s font: %w", family, err)
			return
		}
		fonts[family] = f
	}
}

// faceFor returns a cached face for the family and size. Unknown families
// fall back to sans-serif.
func faceFor(family string, size float64) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	if size <= 0 || math.IsNaN(size) {
		size = DefaultFontSize
	}
	size = math.Min(size, maxFontSize)
	f, ok := fonts[family]
	if !ok {
		family = state.FontSansSerif
		f = fonts[family]
	}
	key := faceKey{family: family, size: size}
	if face, ok := faces.Load(key); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faces.Store(key, face)
	return face, nil
}

// drawText renders text with its top edge at at.Y; at.X is the left edge,
// centre or right edge depending on the alignment.
func drawText(img *image.RGBA, at image.Point, text string, face font.Face, style boarddraw.TextStyle) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(style.Color), Face: face}
	x := at.X
	switch style.Align {
	case state.AlignCenter:
		x -= d.MeasureString(text).Ceil() / 2
	case state.AlignRight:
		x -= d.MeasureString(text).Ceil()
	}
	d.Dot = fixed.P(x, at.Y+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}
