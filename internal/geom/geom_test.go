package geom

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapAngle(t *testing.T) {
	tests := []struct {
		name string
		end  Point
		want Point
	}{
		{name: "horizontal stays", end: Pt(10, 1), want: Pt(math.Hypot(10, 1), 0)},
		{name: "vertical", end: Pt(0, -20), want: Pt(0, -20)},
		{name: "diagonal", end: Pt(10, 9.5), want: Pt(math.Hypot(10, 9.5)*math.Cos(math.Pi/4), math.Hypot(10, 9.5)*math.Sin(math.Pi/4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapAngle(Pt(0, 0), tt.end, 15)
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
		})
	}
}

func TestSnapAngleZeroLength(t *testing.T) {
	assert.Equal(t, Pt(3, 3), SnapAngle(Pt(3, 3), Pt(3, 3), 15))
}

func TestSquareDimensionsKeepsDirection(t *testing.T) {
	w, h := SquareDimensions(-4, 10)
	assert.Equal(t, -10.0, w)
	assert.Equal(t, 10.0, h)
}

func TestPreservedDimensions(t *testing.T) {
	w, h := PreservedDimensions(100, 100, 2)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)

	w, h = PreservedDimensions(-100, 10, 2)
	assert.Equal(t, -20.0, w)
	assert.Equal(t, 10.0, h)

	w, h = PreservedDimensions(30, 40, 0)
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 40.0, h)
}

func TestRectNormalises(t *testing.T) {
	r := Rect(Pt(10, 10), -5, -5)
	assert.Equal(t, image.Rect(5, 5, 10, 10), r)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c)

	c, err = ParseHex("#0f0")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c)

	c, err = ParseHex("00000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = ParseHex("#12")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	for _, s := range []string{"#000000", "#12abef", "#12abef80"} {
		assert.Equal(t, s, Hex(ParseHexOrBlack(s)))
	}
}

func TestParseHexOrBlack(t *testing.T) {
	black := color.RGBA{A: 0xff}
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, ParseHexOrBlack("#00ff00"))
	for _, s := range []string{"", "red", "#12", "#zzzzzz"} {
		assert.NotPanics(t, func() { assert.Equal(t, black, ParseHexOrBlack(s)) }, s)
	}
}

func TestPackUnpack(t *testing.T) {
	c := color.RGBA{R: 1, G: 2, B: 3, A: 4}
	assert.Equal(t, uint32(0x01020304), Pack(c))
	assert.Equal(t, c, Unpack(Pack(c)))
}

func TestNeighbours(t *testing.T) {
	assert.Len(t, Neighbours(nil, image.Pt(0, 0), false), 4)
	assert.Len(t, Neighbours(nil, image.Pt(0, 0), true), 8)
}

func TestManhattanAndClamp(t *testing.T) {
	assert.Equal(t, 7.0, Manhattan(Pt(0, 0), Pt(-3, 4)))
	assert.Equal(t, 5.0, Clamp(9, 1, 5))
	assert.True(t, Pt(0, 0).In(image.Rect(0, 0, 1, 1)))
	assert.False(t, Pt(1, 0).In(image.Rect(0, 0, 1, 1)))
	assert.True(t, ValidPixel(0, 0, 1, 1))
	assert.Equal(t, 7, Offset(1, 2, 3))
}
