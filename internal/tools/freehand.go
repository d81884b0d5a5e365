package tools

import (
	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// Freehand is the pencil. The press point is the first command of the
// stroke's Action; the release command is sent to peers but not recorded.
type Freehand struct {
	env     Env
	pointer *Pointer
	stroke  state.Action
}

func NewFreehand(env Env) *Freehand {
	return &Freehand{env: env, pointer: NewPointer(env.Bounds, true)}
}

func (t *Freehand) Kind() state.ToolKind { return state.ToolFreehand }

func (t *Freehand) Down(ev PointerEvent) *state.Command {
	if !t.pointer.Down(ev.Position) {
		return nil
	}
	t.seal()
	cmd := t.command(ev.Position, true)
	t.stroke = state.NewAction(state.ToolFreehand, false)
	t.stroke.Append(cmd)
	return &cmd
}

func (t *Freehand) Move(ev PointerEvent) *state.Command {
	t.pointer.Move(ev.Position)
	if !t.pointer.IsDragging() {
		cmd := t.command(ev.Position, false)
		return &cmd
	}
	cmd := t.command(ev.Position, true)
	if n := len(t.stroke.Commands); n > 0 {
		prev := t.stroke.Commands[n-1].Position
		if err := draw.Segment(t.env.Surface.Committed(), prev, cmd); err != nil {
			t.env.logger().Warn("draw segment", "err", err)
		}
	}
	t.stroke.Append(cmd)
	return &cmd
}

func (t *Freehand) Up(ev PointerEvent) *state.Command {
	if !t.pointer.IsDragging() {
		return nil
	}
	t.pointer.Up()
	t.seal()
	cmd := t.command(ev.Position, false)
	return &cmd
}

// Blur keeps what was already drawn by committing the open stroke.
func (t *Freehand) Blur() {
	t.pointer.Blur()
	t.seal()
}

func (t *Freehand) seal() {
	if len(t.stroke.Commands) >= 2 {
		t.env.record(t.stroke)
	}
	t.stroke = state.Action{}
}

func (t *Freehand) command(pos geom.Point, dragging bool) state.Command {
	attrs := t.env.Attributes.Get(state.ToolFreehand).(state.FreehandAttributes)
	attrs.StrokeWidth = StrokeWidth(attrs, t.pointer.AverageSpeed())
	return state.Command{
		ToolKind:   state.ToolFreehand,
		Position:   pos,
		IsDragging: dragging,
		Attributes: attrs,
	}
}

// StrokeWidth is the pencil width for the given average pointer speed. A
// positive SpeedFactor widens fast strokes, a negative one thins them.
func StrokeWidth(attrs state.FreehandAttributes, speed float64) float64 {
	w := attrs.StrokeWidth
	switch {
	case attrs.SpeedFactor > 0:
		w = speed * attrs.SpeedFactor
	case attrs.SpeedFactor < 0:
		w = MaxStrokeWidth + speed*attrs.SpeedFactor
	}
	return geom.Clamp(w, MinStrokeWidth, MaxStrokeWidth)
}
