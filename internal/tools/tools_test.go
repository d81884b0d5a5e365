package tools

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/raster"
	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
)

type actions struct{ done []state.Action }

func (a *actions) Do(action state.Action) error {
	a.done = append(a.done, action)
	return nil
}

type fixture struct {
	surface *raster.Surface
	kv      *store.Memory
	attrs   *AttributeStore
	rec     *actions
	manager *Manager
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := raster.New(60, 60)
	require.NoError(t, err)
	f := &fixture{surface: s, kv: store.NewMemory(), rec: &actions{}, logs: &bytes.Buffer{}}
	logger := log.New(f.logs)
	f.attrs = LoadAttributes(context.Background(), f.kv, logger)
	f.manager = NewManager(Env{
		Surface:    s,
		Bounds:     s.Bounds(),
		Recorder:   f.rec,
		Attributes: f.attrs,
		Logger:     logger,
	})
	return f
}

func at(x, y float64) PointerEvent { return PointerEvent{Position: geom.Pt(x, y)} }

func TestPointerIgnoresPressOutsideSurface(t *testing.T) {
	p := NewPointer(image.Rect(0, 0, 10, 10), true)
	assert.False(t, p.Down(geom.Pt(-1, 5)))
	assert.False(t, p.Down(geom.Pt(10, 5)))
	assert.False(t, p.IsDragging())
	assert.True(t, p.Down(geom.Pt(3, 4)))
	assert.Equal(t, geom.Pt(3, 4), p.ClickOrigin())
}

func TestPointerSpeedWindow(t *testing.T) {
	p := NewPointer(image.Rect(0, 0, 1000, 1000), true)
	p.Move(geom.Pt(50, 50))
	assert.Zero(t, p.AverageSpeed(), "no samples while hovering")

	require.True(t, p.Down(geom.Pt(0, 0)))
	p.Move(geom.Pt(3, 4))
	assert.Equal(t, 7.0, p.AverageSpeed())
	p.Move(geom.Pt(303, 4))
	assert.Equal(t, (7.0+MaxSpeedSample)/2, p.AverageSpeed(), "samples are capped")

	for i := 0; i < SpeedWindow; i++ {
		p.Move(geom.Pt(303, float64(6+2*i)))
	}
	assert.Equal(t, 2.0, p.AverageSpeed(), "old samples leave the window")

	p.Up()
	assert.Zero(t, p.AverageSpeed())
	assert.False(t, p.IsDragging())
}

func TestPointerBlur(t *testing.T) {
	p := NewPointer(image.Rect(0, 0, 10, 10), false)
	require.True(t, p.Down(geom.Pt(1, 1)))
	p.Blur()
	assert.False(t, p.IsDragging())
}

func TestStrokeWidth(t *testing.T) {
	base := state.FreehandAttributes{StrokeWidth: 4}
	assert.Equal(t, 4.0, StrokeWidth(base, 80))

	fast := base
	fast.SpeedFactor = 0.5
	assert.Equal(t, 40.0, StrokeWidth(fast, 80))
	assert.Equal(t, float64(MinStrokeWidth), StrokeWidth(fast, 0))

	slow := base
	slow.SpeedFactor = -0.5
	assert.Equal(t, 10.0, StrokeWidth(slow, 80))
	assert.Equal(t, float64(MaxStrokeWidth), StrokeWidth(slow, 0))
}

// The press point is the first command of a freehand Action.
func TestFreehandDragRecordsOneAction(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.manager.Down(at(0, 0)))
	f.manager.Move(at(5, 5))
	f.manager.Move(at(10, 10))
	up := f.manager.Up(at(10, 10))

	require.NotNil(t, up)
	assert.False(t, up.IsDragging)
	require.Len(t, f.rec.done, 1)
	a := f.rec.done[0]
	assert.Equal(t, state.ToolFreehand, a.ToolKind)
	require.Len(t, a.Commands, 3)
	assert.Equal(t, geom.Pt(0, 0), a.Commands[0].Position)
	assert.Equal(t, geom.Pt(10, 10), a.Commands[2].Position)
	for _, cmd := range a.Commands {
		assert.True(t, cmd.IsDragging)
	}

	replayed, err := raster.New(60, 60)
	require.NoError(t, err)
	require.NoError(t, draw.Action(replayed, a))
	assert.Equal(t, f.surface.Snapshot().Pix, replayed.Snapshot().Pix)
	assert.NotEqual(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, replayed.Snapshot().RGBAAt(5, 5))
}

func TestFreehandSinglePressCommitsNothing(t *testing.T) {
	f := newFixture(t)
	f.manager.Down(at(5, 5))
	f.manager.Up(at(5, 5))
	assert.Empty(t, f.rec.done)
}

func TestFreehandHoverSendsCursor(t *testing.T) {
	f := newFixture(t)
	cmd := f.manager.Move(at(7, 8))
	require.NotNil(t, cmd)
	assert.False(t, cmd.IsDragging)
	assert.Empty(t, f.rec.done)
}

func TestFreehandBlurKeepsStroke(t *testing.T) {
	f := newFixture(t)
	f.manager.Down(at(1, 1))
	f.manager.Move(at(9, 9))
	f.manager.Blur()
	require.Len(t, f.rec.done, 1)
	assert.Nil(t, f.manager.Up(at(9, 9)), "release after blur sends nothing")
	assert.Len(t, f.rec.done, 1)
}

func TestRectangleScenario(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolRectangle))
	f.manager.Down(at(0, 0))
	preview := f.manager.Move(at(10, 10))
	require.NotNil(t, preview)
	assert.True(t, preview.IsDragging)
	assert.False(t, preview.ShouldCommit)
	assert.Empty(t, f.rec.done, "previews are not recorded")
	assert.NotEqual(t, f.surface.Snapshot().Pix, f.surface.Composite().Pix, "preview layer shows the shape")

	up := f.manager.Up(at(10, 10))
	require.NotNil(t, up)
	assert.True(t, up.ShouldCommit)
	require.Len(t, f.rec.done, 1)

	cmd := f.rec.done[0].Commands[0]
	assert.Equal(t, state.ToolRectangle, cmd.ToolKind)
	assert.Equal(t, geom.Pt(0, 0), *cmd.ClickOrigin)
	assert.Equal(t, geom.Pt(10, 10), cmd.Position)
	attrs := cmd.Attributes.(state.ShapeAttributes)
	assert.Equal(t, 1.0, attrs.StrokeWidth)
	assert.Equal(t, "#000000", attrs.StrokeStyle)
	assert.Equal(t, f.surface.Snapshot().Pix, f.surface.Composite().Pix, "preview cleared after commit")
}

func TestShiftTogglesIsEqual(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolEllipse))
	f.manager.Down(at(20, 20))
	cmd := f.manager.Up(PointerEvent{Position: geom.Pt(30, 25), Shift: true})
	assert.True(t, cmd.Attributes.(state.ShapeAttributes).IsEqual)

	_, err := f.attrs.Change(state.ToolEllipse, "isEqual", "true")
	require.NoError(t, err)
	f.manager.Down(at(20, 20))
	cmd = f.manager.Up(PointerEvent{Position: geom.Pt(30, 25), Shift: true})
	assert.False(t, cmd.Attributes.(state.ShapeAttributes).IsEqual)
}

func TestTextDragSetsFontSize(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolText))
	_, err := f.attrs.Change(state.ToolText, "textContent", "hello")
	require.NoError(t, err)

	f.manager.Down(at(5, 5))
	cmd := f.manager.Up(PointerEvent{Position: geom.Pt(40, 35), Shift: true})
	attrs := cmd.Attributes.(state.TextAttributes)
	assert.Equal(t, 30.0, attrs.FontSize)
	require.Len(t, f.rec.done, 1)
}

func TestEmptyTextIsNotRecorded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolText))
	f.manager.Down(at(5, 5))
	f.manager.Up(at(20, 20))
	assert.Empty(t, f.rec.done)
	assert.Contains(t, f.logs.String(), "text field is empty")
}

func TestImageIsLocalOnly(t *testing.T) {
	f := newFixture(t)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	_, err := f.attrs.Change(state.ToolImage, "imageData", draw.EncodeImage(buf.Bytes()))
	require.NoError(t, err)

	require.NoError(t, f.manager.Select(state.ToolImage))
	f.manager.Down(at(0, 0))
	sent := f.manager.Up(at(20, 20))
	require.NotNil(t, sent)
	assert.Empty(t, sent.Attributes.(state.ImageAttributes).Source)

	require.Len(t, f.rec.done, 1)
	recorded := f.rec.done[0].Commands[0].Attributes.(state.ImageAttributes)
	assert.NotEmpty(t, recorded.Source)
}

func TestFillCommitsOnPress(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolFill))
	_, err := f.attrs.Change(state.ToolFill, "fillColor", "#ff0000")
	require.NoError(t, err)

	cmd := f.manager.Down(at(30, 30))
	require.NotNil(t, cmd)
	assert.True(t, cmd.ShouldCommit)
	require.Len(t, f.rec.done, 1)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, f.surface.Snapshot().RGBAAt(0, 0))
	assert.Nil(t, f.manager.Up(at(30, 30)))
}

func TestFillSameColourChangesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolFill))
	_, err := f.attrs.Change(state.ToolFill, "fillColor", "#ffffff")
	require.NoError(t, err)
	before := f.surface.Snapshot().Pix

	f.manager.Down(at(30, 30))
	assert.Empty(t, f.rec.done)
	assert.Equal(t, before, f.surface.Snapshot().Pix)
}

func TestSelectBlursPreviousTool(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.Select(state.ToolLine))
	f.manager.Down(at(1, 1))
	f.manager.Move(at(30, 30))
	require.NoError(t, f.manager.Select(state.ToolFreehand))
	assert.Equal(t, f.surface.Snapshot().Pix, f.surface.Composite().Pix)
	assert.Equal(t, state.ToolFreehand, f.manager.Active())

	assert.Error(t, f.manager.Select(state.ToolClear))
	assert.Error(t, f.manager.Select("spray"))
}

func TestClearRecordsOneCommandAction(t *testing.T) {
	f := newFixture(t)
	f.manager.Down(at(1, 1))
	f.manager.Move(at(30, 30))
	f.manager.Up(at(30, 30))

	cmd := f.manager.Clear()
	assert.Equal(t, state.ToolClear, cmd.ToolKind)
	require.Len(t, f.rec.done, 2)
	assert.Len(t, f.rec.done[1].Commands, 1)
	blank, err := raster.New(60, 60)
	require.NoError(t, err)
	assert.Equal(t, blank.Snapshot().Pix, f.surface.Snapshot().Pix)
}
