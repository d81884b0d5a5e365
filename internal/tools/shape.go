package tools

import (
	"errors"
	"math"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/state"
)

// Shape implements the drag, preview, commit lifecycle of rectangle,
// ellipse, line, text and image.
type Shape struct {
	env     Env
	kind    state.ToolKind
	pointer *Pointer
}

// NewShape creates the tool for a shape kind.
func NewShape(env Env, kind state.ToolKind) *Shape {
	return &Shape{env: env, kind: kind, pointer: NewPointer(env.Bounds, false)}
}

func (t *Shape) Kind() state.ToolKind { return t.kind }

func (t *Shape) Down(ev PointerEvent) *state.Command {
	if !t.pointer.Down(ev.Position) {
		return nil
	}
	return t.outgoing(t.command(ev, true, false))
}

func (t *Shape) Move(ev PointerEvent) *state.Command {
	t.pointer.Move(ev.Position)
	if !t.pointer.IsDragging() {
		return t.outgoing(t.command(ev, false, false))
	}
	cmd := t.command(ev, true, false)
	t.env.Surface.ClearPreview(draw.LocalOwner)
	if err := draw.Command(t.env.Surface, t.env.Surface.Preview(draw.LocalOwner), cmd); err != nil {
		t.env.logger().Debug("preview not drawn", "tool", t.kind, "err", err)
	}
	return t.outgoing(cmd)
}

func (t *Shape) Up(ev PointerEvent) *state.Command {
	if !t.pointer.IsDragging() {
		return nil
	}
	t.pointer.Move(ev.Position)
	t.pointer.Up()
	cmd := t.command(ev, false, true)
	t.env.Surface.ClearPreview(draw.LocalOwner)

	err := draw.Command(t.env.Surface, t.env.Surface.Committed(), cmd)
	switch {
	case errors.Is(err, draw.ErrInvalidAction):
		t.env.logger().Warn("nothing drawn", "tool", t.kind, "err", err)
	case err != nil:
		t.env.logger().Error("draw", "tool", t.kind, "err", err)
	default:
		a := state.NewAction(t.kind, false)
		a.Append(cmd)
		t.env.record(a)
	}
	return t.outgoing(cmd)
}

func (t *Shape) Blur() {
	t.pointer.Blur()
	t.env.Surface.ClearPreview(draw.LocalOwner)
}

// command captures the gesture with the attributes the draw routine needs
// to reproduce it: Shift is folded into IsEqual and a drag-sized font is
// resolved to a concrete size.
func (t *Shape) command(ev PointerEvent, dragging, commit bool) state.Command {
	origin := t.pointer.ClickOrigin()
	cmd := state.Command{
		ToolKind:     t.kind,
		Position:     t.pointer.LastPosition(),
		ClickOrigin:  pointPtr(origin),
		IsDragging:   dragging,
		ShouldCommit: commit,
	}
	switch attrs := t.env.Attributes.Get(t.kind).(type) {
	case state.ShapeAttributes:
		attrs.IsEqual = attrs.IsEqual != ev.Shift
		cmd.Attributes = attrs
	case state.TextAttributes:
		attrs.IsEqual = attrs.IsEqual != ev.Shift
		if attrs.IsEqual {
			if size := math.Abs(cmd.Position.Y - origin.Y); size >= 1 {
				attrs.FontSize = size
			}
		}
		cmd.Attributes = attrs
	default:
		cmd.Attributes = attrs
	}
	return cmd
}

// outgoing strips what peers must not receive: images are local-only, so
// their commands travel as cursor updates without the picture.
func (t *Shape) outgoing(cmd state.Command) *state.Command {
	if attrs, ok := cmd.Attributes.(state.ImageAttributes); ok {
		attrs.Source = ""
		cmd.Attributes = attrs
	}
	return &cmd
}

