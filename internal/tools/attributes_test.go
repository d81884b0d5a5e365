package tools

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
)

func TestSchemaCoversEveryDrawingTool(t *testing.T) {
	for _, kind := range state.Kinds() {
		if kind == state.ToolClear {
			assert.Empty(t, Schema(kind))
			continue
		}
		fields := Schema(kind)
		require.NotEmpty(t, fields, kind)
		for _, f := range fields {
			_, err := FieldValue(kind, state.DefaultAttributes(kind), f.Name)
			assert.NoError(t, err, "%s.%s", kind, f.Name)
		}
	}
}

func TestApplyChange(t *testing.T) {
	tests := []struct {
		name  string
		kind  state.ToolKind
		field string
		raw   string
		want  string
	}{
		{"colour normalised", state.ToolRectangle, "strokeStyle", "#F00", "#ff0000"},
		{"range clamped", state.ToolRectangle, "strokeWidth", "80", "50"},
		{"checkbox", state.ToolEllipse, "isEqual", "true", "true"},
		{"select", state.ToolText, "font", "monospace", "monospace"},
		{"text", state.ToolText, "textContent", "hi there", "hi there"},
		{"tolerance", state.ToolFill, "tolerance", "250.7", "250"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := ApplyChange(tt.kind, state.DefaultAttributes(tt.kind), tt.field, tt.raw)
			require.NoError(t, err)
			got, err := FieldValue(tt.kind, attrs, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyChangeRejects(t *testing.T) {
	def := state.DefaultAttributes(state.ToolText)
	for field, raw := range map[string]string{
		"font":      "cursive",
		"fontSize":  "big",
		"fillStyle": "red",
		"nope":      "1",
	} {
		got, err := ApplyChange(state.ToolText, def, field, raw)
		assert.Error(t, err, field)
		assert.Equal(t, def, got)
	}
}

func TestSettingFillColourEnablesFill(t *testing.T) {
	attrs, err := ApplyChange(state.ToolRectangle, state.DefaultAttributes(state.ToolRectangle), "fillStyle", "#00ff00")
	require.NoError(t, err)
	shape := attrs.(state.ShapeAttributes)
	assert.True(t, shape.IsFilled)
	assert.Equal(t, "#00ff00", shape.FillStyle)
}

func TestAttributeStorePersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := LoadAttributes(ctx, kv, nil)
	_, err := s.Change(state.ToolFreehand, "strokeWidth", "7")
	require.NoError(t, err)

	data, ok, err := kv.Get(ctx, "tool:freehand")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), `"strokeWidth":7`)

	reloaded := LoadAttributes(ctx, kv, nil)
	assert.Equal(t, 7.0, reloaded.Get(state.ToolFreehand).(state.FreehandAttributes).StrokeWidth)
}

func TestAttributeStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, AttributeKey(state.ToolLine), []byte(`{"strokeWidth":`)))
	var logs bytes.Buffer

	s := LoadAttributes(ctx, kv, log.New(&logs))
	assert.Equal(t, state.DefaultAttributes(state.ToolLine), s.Get(state.ToolLine))
	assert.Contains(t, logs.String(), "invalid saved tool attributes")
}

func TestAttributeStoreSetChecksVariant(t *testing.T) {
	s := LoadAttributes(context.Background(), store.NewMemory(), nil)
	assert.Error(t, s.Set(state.ToolFill, state.ShapeAttributes{}))
}
