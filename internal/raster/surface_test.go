package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

func TestNewRejectsEmptySize(t *testing.T) {
	_, err := New(0, 10)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestCommittedStartsWhite(t *testing.T) {
	s, err := New(3, 3)
	require.NoError(t, err)
	assert.Equal(t, Background, s.Snapshot().RGBAAt(1, 1))
}

func TestCompositeLayersPreviewOverCommitted(t *testing.T) {
	s, err := New(10, 10)
	require.NoError(t, err)
	red := color.RGBA{R: 0xff, A: 0xff}
	blue := color.RGBA{B: 0xff, A: 0xff}

	s.Committed().StrokeLine(geom.Pt(0, 0), geom.Pt(9, 0), red, 1, false)
	s.Preview("peer").StrokeLine(geom.Pt(0, 5), geom.Pt(9, 5), blue, 1, false)

	img := s.Composite()
	assert.Equal(t, red, img.RGBAAt(4, 0))
	assert.Equal(t, blue, img.RGBAAt(4, 5))
	assert.Equal(t, Background, s.Snapshot().RGBAAt(4, 5), "preview never reaches the committed layer")

	s.ClearPreview("peer")
	assert.Equal(t, Background, s.Composite().RGBAAt(4, 5))

	s.Preview("peer").StrokeLine(geom.Pt(0, 5), geom.Pt(9, 5), blue, 1, false)
	s.RemovePreview("peer")
	assert.Equal(t, Background, s.Composite().RGBAAt(4, 5))
}

func TestSnapshotIsACopy(t *testing.T) {
	s, err := New(4, 4)
	require.NoError(t, err)
	snap := s.Snapshot()
	s.Committed().FillRect(s.Bounds(), color.RGBA{A: 0xff})
	assert.Equal(t, Background, snap.RGBAAt(0, 0))
	s.Clear()
	assert.Equal(t, Background, s.Snapshot().RGBAAt(0, 0))
}

func TestThickLineRoundCap(t *testing.T) {
	s, err := New(20, 20)
	require.NoError(t, err)
	c := color.RGBA{G: 0xff, A: 0xff}
	s.Committed().StrokeLine(geom.Pt(10, 10), geom.Pt(10, 10), c, 5, true)
	img := s.Snapshot()
	assert.Equal(t, c, img.RGBAAt(12, 10))
	assert.Equal(t, Background, img.RGBAAt(12, 12), "round brush skips the corners")

	s.Committed().StrokeLine(geom.Pt(10, 10), geom.Pt(10, 10), c, 5, false)
	assert.Equal(t, c, s.Snapshot().RGBAAt(12, 12))
}

func TestFaceForFallsBackToSansSerif(t *testing.T) {
	f1, err := faceFor("cursive", 14)
	require.NoError(t, err)
	f2, err := faceFor(state.FontSansSerif, 14)
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = faceFor(state.FontMonospace, 0)
	require.NoError(t, err)
}

func TestDrawTextAlignment(t *testing.T) {
	s, err := New(120, 40)
	require.NoError(t, err)
	style := draw.TextStyle{Font: state.FontSerif, Size: 20, Align: state.AlignRight, Color: color.RGBA{A: 0xff}}
	require.NoError(t, s.Committed().DrawText(geom.Pt(60, 5), "Board", style))
	img := s.Snapshot()
	for y := 0; y < 40; y++ {
		for x := 61; x < 120; x++ {
			require.Equal(t, Background, img.RGBAAt(x, y), "right aligned text ends at the anchor")
		}
	}
}
