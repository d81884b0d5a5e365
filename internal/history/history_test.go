package history

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/raster"
	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
)

type recorder struct{ notices []string }

func (r *recorder) Notify(msg string) { r.notices = append(r.notices, msg) }

type fixture struct {
	surface  *raster.Surface
	kv       *store.Memory
	notices  *recorder
	logs     *bytes.Buffer
	history  *History
	blankPix []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := raster.New(40, 40)
	require.NoError(t, err)
	f := &fixture{surface: s, kv: store.NewMemory(), notices: &recorder{}, logs: &bytes.Buffer{}}
	f.blankPix = s.Snapshot().Pix
	f.history = f.reopen()
	return f
}

// reopen builds a fresh History over the same store and surface.
func (f *fixture) reopen() *History {
	logger := log.New(f.logs)
	return New(f.surface, f.kv, WithLogger(logger), WithNotifier(f.notices))
}

func rectAction(x0, y0, x1, y1 float64, fill string) state.Action {
	from := geom.Pt(x0, y0)
	a := state.NewAction(state.ToolRectangle, false)
	a.Append(state.Command{
		ToolKind:     state.ToolRectangle,
		Position:     geom.Pt(x1, y1),
		ClickOrigin:  &from,
		IsDragging:   true,
		ShouldCommit: true,
		Attributes:   state.ShapeAttributes{StrokeStyle: "#000000", StrokeWidth: 1, IsFilled: true, FillStyle: fill},
	})
	return a
}

// commit draws an action live and records it, the way a tool does.
func (f *fixture) commit(t *testing.T, a state.Action) {
	t.Helper()
	require.NoError(t, draw.Action(f.surface, a))
	require.NoError(t, f.history.Do(a))
}

func (f *fixture) pixels() []byte { return f.surface.Snapshot().Pix }

func TestDoRejectsEmptyAction(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 5, 5, "#ff0000"))
	require.NoError(t, f.history.Undo())

	err := f.history.Do(state.NewAction(state.ToolLine, false))
	assert.ErrorIs(t, err, ErrEmptyAction)
	assert.True(t, f.history.CanRedo(), "stacks untouched")
}

func TestUndoRedoScenario(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(10, 10, 30, 30, "#ff0000"))
	withRect := f.pixels()
	require.NotEqual(t, f.blankPix, withRect)

	require.NoError(t, f.history.Undo())
	assert.Equal(t, f.blankPix, f.pixels())
	assert.False(t, f.history.CanUndo())
	assert.True(t, f.history.CanRedo())

	require.NoError(t, f.history.Redo())
	assert.Equal(t, withRect, f.pixels())
	assert.True(t, f.history.CanUndo())
	assert.False(t, f.history.CanRedo())
}

func TestUndoRedoInverse(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	f.commit(t, rectAction(5, 5, 20, 20, "#00ff00"))
	f.commit(t, rectAction(15, 2, 35, 12, "#0000ff"))
	before := f.pixels()
	stacks := f.history.Snapshot()

	require.NoError(t, f.history.Undo())
	require.NoError(t, f.history.Undo())
	require.NoError(t, f.history.Redo())
	require.NoError(t, f.history.Redo())

	assert.Equal(t, before, f.pixels())
	assert.Equal(t, stacks, f.history.Snapshot())
}

func TestDoInvalidatesRedo(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	require.NoError(t, f.history.Undo())
	require.True(t, f.history.CanRedo())

	f.commit(t, rectAction(5, 5, 20, 20, "#00ff00"))
	assert.False(t, f.history.CanRedo())
	assert.ErrorIs(t, f.history.Redo(), ErrNothingToRedo)
}

func TestNothingToUndoOrRedo(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.history.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, f.history.Redo(), ErrNothingToRedo)
	assert.Equal(t, []string{NoticeNothingToUndo, NoticeNothingToRedo}, f.notices.notices)
}

func TestReplayIsDeterministic(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	f.commit(t, rectAction(5, 5, 20, 20, "#00ff00"))
	f.commit(t, rectAction(15, 2, 35, 12, "#0000ff"))
	live := f.pixels()

	require.NoError(t, f.history.ReplayAll())
	first := f.pixels()
	f.surface.Clear()
	require.NoError(t, f.history.ReplayAll())
	second := f.pixels()

	assert.Equal(t, first, second, "two replays from a cleared surface")
	assert.Equal(t, live, first, "replay matches the live drawing")
	assert.NotEqual(t, f.blankPix, first)
}

func TestRestoreOversizedStroke(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	attrs := `"toolAttributes":{"strokeStyle":"#000000","strokeWidth":20000}`
	blob := `{"undoStack":[{"toolKind":"freehand","commands":[` +
		`{"toolKind":"freehand","x":5,"y":5,"isDragging":true,` + attrs + `},` +
		`{"toolKind":"freehand","x":200000000,"y":5,"isDragging":true,` + attrs + `}]}],"redoStack":[]}`
	require.NoError(t, f.kv.Set(ctx, Key, []byte(blob)))

	done := make(chan error, 1)
	go func() { done <- f.history.Restore() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("restore did not finish in time")
	}
	assert.True(t, f.history.CanUndo())
	assert.NotEqual(t, f.blankPix, f.pixels())
}

func TestPersistAndRestore(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	f.commit(t, rectAction(5, 5, 20, 20, "#00ff00"))
	require.NoError(t, f.history.Undo())
	live := f.pixels()

	data, ok, err := f.kv.Get(context.Background(), Key)
	require.NoError(t, err)
	require.True(t, ok)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "undoStack")
	assert.Contains(t, raw, "redoStack")

	f.surface.Clear()
	restored := f.reopen()
	require.NoError(t, restored.Restore())
	assert.Equal(t, live, f.pixels())
	assert.Equal(t, f.history.Snapshot(), restored.Snapshot())
}

func TestRestoreWithoutBlob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.history.Restore())
	assert.False(t, f.history.CanUndo())
	assert.Equal(t, f.blankPix, f.pixels())
}

func TestRestoreCorruptBlobResets(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"not json":  `{"undoStack": [`,
		"bad kind":  `{"undoStack":[{"toolKind":"spray","commands":[{"toolKind":"spray","x":1,"y":1}]}],"redoStack":[]}`,
		"bad image": `{"undoStack":[{"toolKind":"image","commands":[{"toolKind":"image","x":9,"y":9,"clickX":1,"clickY":1,"isDragging":true,"toolAttributes":{"imageData":"%%%"}}]}],"redoStack":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.kv.Set(ctx, Key, []byte(blob)))
			require.NoError(t, f.history.Restore())

			assert.False(t, f.history.CanUndo())
			assert.False(t, f.history.CanRedo())
			assert.Equal(t, f.blankPix, f.pixels())
			_, ok, err := f.kv.Get(ctx, Key)
			require.NoError(t, err)
			assert.False(t, ok, "corrupt blob removed")
			assert.Contains(t, f.logs.String(), "invalid data in history")
		})
	}
}

func TestReplaySkipsInvalidActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	want := f.pixels()

	// A zero-command action and a single-point freehand stroke are skipped.
	blob := `{"undoStack":[` +
		`{"toolKind":"clear","commands":[]},` +
		`{"toolKind":"freehand","commands":[{"toolKind":"freehand","x":3,"y":3,"isDragging":true}]},` +
		mustJSON(t, rectAction(1, 1, 10, 10, "#ff0000")) +
		`],"redoStack":[]}`
	require.NoError(t, f.kv.Set(ctx, Key, []byte(blob)))

	restored := f.reopen()
	require.NoError(t, restored.Restore())
	assert.Len(t, restored.Snapshot().Undo, 3)
	assert.Equal(t, want, f.pixels())
	assert.Contains(t, f.logs.String(), "skipping invalid action")
}

func TestResetForgetsEverything(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	f.history.Reset()

	assert.False(t, f.history.CanUndo())
	assert.Equal(t, f.blankPix, f.pixels())
	_, ok, err := f.kv.Get(context.Background(), Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearActionIsUndoable(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	before := f.pixels()

	clearAction := state.NewAction(state.ToolClear, false)
	clearAction.Append(state.Command{ToolKind: state.ToolClear, ShouldCommit: true, Attributes: state.ClearAttributes{}})
	f.commit(t, clearAction)
	assert.Equal(t, f.blankPix, f.pixels())

	require.NoError(t, f.history.Undo())
	assert.Equal(t, before, f.pixels())

	require.NoError(t, f.history.Redo())
	assert.Equal(t, f.blankPix, f.pixels())
}

func TestSnapshotIsIndependent(t *testing.T) {
	f := newFixture(t)
	f.commit(t, rectAction(1, 1, 10, 10, "#ff0000"))
	snap := f.history.Snapshot()
	snap.Undo[0].Commands[0].ClickOrigin.X = 99
	assert.Equal(t, 1.0, f.history.Snapshot().Undo[0].Commands[0].ClickOrigin.X)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
