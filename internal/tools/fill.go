package tools

import (
	"LocalBoard/internal/draw"
	"LocalBoard/internal/state"
)

// Fill flood fills on press and commits immediately.
type Fill struct {
	env     Env
	pointer *Pointer
}

func NewFill(env Env) *Fill {
	return &Fill{env: env, pointer: NewPointer(env.Bounds, false)}
}

func (t *Fill) Kind() state.ToolKind { return state.ToolFill }

func (t *Fill) Down(ev PointerEvent) *state.Command {
	if !t.pointer.Down(ev.Position) {
		return nil
	}
	attrs := t.env.Attributes.Get(state.ToolFill).(state.FillAttributes)
	cmd := state.Command{
		ToolKind:     state.ToolFill,
		Position:     ev.Position,
		ClickOrigin:  pointPtr(ev.Position),
		ShouldCommit: true,
		Attributes:   attrs,
	}
	changed, err := draw.Fill(t.env.Surface.Committed(), ev.Position, attrs)
	if err != nil {
		t.env.logger().Error("fill", "err", err)
		return &cmd
	}
	t.env.logger().Debug("filled", "pixels", changed)
	if changed > 0 {
		a := state.NewAction(state.ToolFill, false)
		a.Append(cmd)
		t.env.record(a)
	}
	return &cmd
}

func (t *Fill) Move(ev PointerEvent) *state.Command {
	t.pointer.Move(ev.Position)
	return &state.Command{
		ToolKind:   state.ToolFill,
		Position:   ev.Position,
		IsDragging: t.pointer.IsDragging(),
		Attributes: t.env.Attributes.Get(state.ToolFill),
	}
}

func (t *Fill) Up(PointerEvent) *state.Command {
	t.pointer.Up()
	return nil
}

func (t *Fill) Blur() { t.pointer.Blur() }
