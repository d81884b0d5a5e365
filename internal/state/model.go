// Package state holds the board's data model: the tool kinds, the
// self-describing Command, the undo-able Action and peer identities.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"LocalBoard/internal/geom"
)

// ErrUnknownKind is returned when a command names a tool kind this build
// does not know.
var ErrUnknownKind = errors.New("unknown tool kind")

// ToolKind names the tool that produced a command.
type ToolKind string

const (
	ToolFreehand  ToolKind = "freehand"
	ToolRectangle ToolKind = "rectangle"
	ToolEllipse   ToolKind = "ellipse"
	ToolLine      ToolKind = "line"
	ToolFill      ToolKind = "fill"
	ToolText      ToolKind = "text"
	ToolImage     ToolKind = "image"
	ToolClear     ToolKind = "clear"
)

// Kinds lists every tool kind in toolbar order.
func Kinds() []ToolKind {
	return []ToolKind{ToolFreehand, ToolRectangle, ToolEllipse, ToolLine, ToolFill, ToolText, ToolImage, ToolClear}
}

// Valid reports whether k is one of the known kinds.
func (k ToolKind) Valid() bool {
	switch k {
	case ToolFreehand, ToolRectangle, ToolEllipse, ToolLine, ToolFill, ToolText, ToolImage, ToolClear:
		return true
	}
	return false
}

// IsShape reports whether k follows the drag-preview-commit lifecycle.
func (k ToolKind) IsShape() bool {
	switch k {
	case ToolRectangle, ToolEllipse, ToolLine, ToolText, ToolImage:
		return true
	}
	return false
}

// Command is one atomic, replayable drawing instruction. Everything needed
// to redraw it travels with it.
type Command struct {
	ToolKind     ToolKind
	Position     geom.Point
	ClickOrigin  *geom.Point
	IsDragging   bool
	ShouldCommit bool
	Attributes   Attributes
}

// Origin returns the drag start, if the command carries one.
func (c Command) Origin() (geom.Point, bool) {
	if c.ClickOrigin == nil {
		return geom.Point{}, false
	}
	return *c.ClickOrigin, true
}

type commandJSON struct {
	ToolKind       ToolKind        `json:"toolKind"`
	X              float64         `json:"x"`
	Y              float64         `json:"y"`
	ClickX         *float64        `json:"clickX,omitempty"`
	ClickY         *float64        `json:"clickY,omitempty"`
	IsDragging     bool            `json:"isDragging"`
	ShouldCommit   bool            `json:"shouldCommit,omitempty"`
	ToolAttributes json.RawMessage `json:"toolAttributes,omitempty"`
}

// MarshalJSON writes the flat wire form of the command.
func (c Command) MarshalJSON() ([]byte, error) {
	w := commandJSON{
		ToolKind:     c.ToolKind,
		X:            c.Position.X,
		Y:            c.Position.Y,
		IsDragging:   c.IsDragging,
		ShouldCommit: c.ShouldCommit,
	}
	if c.ClickOrigin != nil {
		x, y := c.ClickOrigin.X, c.ClickOrigin.Y
		w.ClickX, w.ClickY = &x, &y
	}
	if c.Attributes != nil {
		raw, err := json.Marshal(c.Attributes)
		if err != nil {
			return nil, fmt.Errorf("marshal %s attributes: %w", c.ToolKind, err)
		}
		w.ToolAttributes = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form. The attribute variant is chosen by
// toolKind; absent attributes fall back to the kind's defaults.
func (c *Command) UnmarshalJSON(data []byte) error {
	var w commandJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.ToolKind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.ToolKind)
	}
	attrs, err := DecodeAttributes(w.ToolKind, w.ToolAttributes)
	if err != nil {
		return err
	}
	*c = Command{
		ToolKind:     w.ToolKind,
		Position:     geom.Pt(w.X, w.Y),
		IsDragging:   w.IsDragging,
		ShouldCommit: w.ShouldCommit,
		Attributes:   attrs,
	}
	if w.ClickX != nil && w.ClickY != nil {
		c.ClickOrigin = &geom.Point{X: *w.ClickX, Y: *w.ClickY}
	}
	return nil
}

// Action is one undo-able unit. Commands are kept in drawing order.
type Action struct {
	ToolKind         ToolKind  `json:"toolKind"`
	Commands         []Command `json:"commands"`
	IsFromRemotePeer bool      `json:"isFromRemotePeer,omitempty"`
}

// NewAction starts an empty action for kind.
func NewAction(kind ToolKind, remote bool) Action {
	return Action{ToolKind: kind, IsFromRemotePeer: remote}
}

// Append adds cmd to the end of the action.
func (a *Action) Append(cmd Command) { a.Commands = append(a.Commands, cmd) }

// Empty reports whether the action has no commands and so must never be
// drawn or stored.
func (a Action) Empty() bool { return len(a.Commands) == 0 }

// Clone returns a copy that shares no slices with a.
func (a Action) Clone() Action {
	out := a
	out.Commands = make([]Command, len(a.Commands))
	for i, cmd := range a.Commands {
		if cmd.ClickOrigin != nil {
			o := *cmd.ClickOrigin
			cmd.ClickOrigin = &o
		}
		out.Commands[i] = cmd
	}
	return out
}

// UserID identifies a connected peer.
type UserID = string

// User is a peer identity as assigned by the relay.
type User struct {
	UserID   UserID `json:"userId"`
	UserName string `json:"userName"`
}
