// Package tools turns pointer input into Commands. Each tool draws its own
// commands through the shared draw routines and commits finished Actions
// to a Recorder.
package tools

import (
	"image"

	"github.com/charmbracelet/log"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// PointerEvent is a normalised pointer event in surface coordinates.
type PointerEvent struct {
	Position geom.Point
	// Shift inverts the tool's IsEqual attribute for this event.
	Shift bool
}

// Tool is one drawing tool. Each returned Command has already been drawn
// locally and should be sent to peers; nil means nothing to send.
type Tool interface {
	Kind() state.ToolKind
	Down(ev PointerEvent) *state.Command
	Move(ev PointerEvent) *state.Command
	Up(ev PointerEvent) *state.Command
	// Blur abandons the gesture when focus leaves the surface.
	Blur()
}

// Recorder commits finished Actions, normally the history.
type Recorder interface {
	Do(a state.Action) error
}

// Env is what every tool needs from the board.
type Env struct {
	Surface    draw.Surface
	Bounds     image.Rectangle
	Recorder   Recorder
	Attributes *AttributeStore
	Logger     *log.Logger
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

func (e Env) record(a state.Action) {
	if err := e.Recorder.Do(a); err != nil {
		e.logger().Warn("action not recorded", "tool", a.ToolKind, "err", err)
	}
}

func pointPtr(p geom.Point) *geom.Point { return &p }
