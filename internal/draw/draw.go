// Package draw holds the single draw routine of every tool kind. Tools use
// it for live rendering and the history uses it for replay, so a stroke
// replayed from its Commands looks exactly like the one drawn live.
package draw

import (
	"errors"
	"fmt"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// ErrInvalidAction marks an Action or Command that cannot be drawn but does
// not make the surrounding history unusable. Replay skips it.
var ErrInvalidAction = errors.New("invalid action")

// LineSnapDegrees is the angle step of a line drawn with IsEqual.
const LineSnapDegrees = 15

// Action draws a recorded Action onto the committed layer of s.
func Action(s Surface, a state.Action) error {
	if a.Empty() {
		return fmt.Errorf("%w: %s action has no commands", ErrInvalidAction, a.ToolKind)
	}
	if a.ToolKind == state.ToolFreehand {
		return Path(s.Committed(), a.Commands)
	}
	for _, cmd := range a.Commands {
		if err := Command(s, s.Committed(), cmd); err != nil {
			return err
		}
	}
	return nil
}

// Path draws a freehand stroke through cmds. Each segment uses the
// attributes of the command it ends on.
func Path(l Layer, cmds []state.Command) error {
	if len(cmds) < 2 {
		return fmt.Errorf("%w: freehand path needs at least 2 points, got %d", ErrInvalidAction, len(cmds))
	}
	for i := 1; i < len(cmds); i++ {
		if err := Segment(l, cmds[i-1].Position, cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

// Segment draws one freehand segment from the previous point to cmd.
func Segment(l Layer, from geom.Point, cmd state.Command) error {
	attrs, ok := cmd.Attributes.(state.FreehandAttributes)
	if !ok {
		return fmt.Errorf("%w: freehand command carries %T", ErrInvalidAction, cmd.Attributes)
	}
	l.StrokeLine(from, cmd.Position, geom.ParseHexOrBlack(attrs.StrokeStyle), attrs.StrokeWidth, attrs.LineCap == state.CapRound)
	return nil
}

// Command draws a single non-freehand command onto l. Clear always wipes
// the committed layer of s.
func Command(s Surface, l Layer, cmd state.Command) error {
	switch cmd.ToolKind {
	case state.ToolClear:
		s.Clear()
		return nil
	case state.ToolFill:
		attrs, ok := cmd.Attributes.(state.FillAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		_, err := Fill(l, cmd.Position, attrs)
		return err
	case state.ToolFreehand:
		return fmt.Errorf("%w: freehand commands are drawn as a path", ErrInvalidAction)
	}

	if cmd.ClickOrigin == nil {
		return fmt.Errorf("%w: %s command has no click origin", ErrInvalidAction, cmd.ToolKind)
	}
	origin := *cmd.ClickOrigin

	switch cmd.ToolKind {
	case state.ToolRectangle:
		attrs, ok := cmd.Attributes.(state.ShapeAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		Rectangle(l, origin, cmd.Position, attrs)
	case state.ToolEllipse:
		attrs, ok := cmd.Attributes.(state.ShapeAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		Ellipse(l, origin, cmd.Position, attrs)
	case state.ToolLine:
		attrs, ok := cmd.Attributes.(state.ShapeAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		Line(l, origin, cmd.Position, attrs)
	case state.ToolText:
		attrs, ok := cmd.Attributes.(state.TextAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		return Text(l, origin, attrs)
	case state.ToolImage:
		attrs, ok := cmd.Attributes.(state.ImageAttributes)
		if !ok {
			return attributeMismatch(cmd)
		}
		return Image(l, origin, cmd.Position, attrs)
	default:
		return fmt.Errorf("%w: %q", state.ErrUnknownKind, cmd.ToolKind)
	}
	return nil
}

func attributeMismatch(cmd state.Command) error {
	return fmt.Errorf("%w: %s command carries %T", ErrInvalidAction, cmd.ToolKind, cmd.Attributes)
}

// Rectangle spans origin to end, forced square when IsEqual.
func Rectangle(l Layer, origin, end geom.Point, attrs state.ShapeAttributes) {
	w, h := end.X-origin.X, end.Y-origin.Y
	if attrs.IsEqual {
		w, h = geom.SquareDimensions(w, h)
	}
	r := geom.Rect(origin, w, h)
	if attrs.IsFilled {
		l.FillRect(r, geom.ParseHexOrBlack(attrs.FillStyle))
	}
	l.StrokeRect(r, geom.ParseHexOrBlack(attrs.StrokeStyle), attrs.StrokeWidth)
}

// Ellipse expands from origin as its centre, forced round when IsEqual.
func Ellipse(l Layer, center, end geom.Point, attrs state.ShapeAttributes) {
	d := end.Sub(center)
	rx, ry := abs(d.X), abs(d.Y)
	if attrs.IsEqual {
		rx = geom.CircleRadius(rx, ry)
		ry = rx
	}
	if attrs.IsFilled {
		l.FillEllipse(center, rx, ry, geom.ParseHexOrBlack(attrs.FillStyle))
	}
	l.StrokeEllipse(center, rx, ry, geom.ParseHexOrBlack(attrs.StrokeStyle), attrs.StrokeWidth)
}

// Line joins origin and end, snapped to LineSnapDegrees when IsEqual.
func Line(l Layer, origin, end geom.Point, attrs state.ShapeAttributes) {
	if attrs.IsEqual {
		end = geom.SnapAngle(origin, end, LineSnapDegrees)
	}
	l.StrokeLine(origin, end, geom.ParseHexOrBlack(attrs.StrokeStyle), attrs.StrokeWidth, false)
}

// Text writes attrs.TextContent with its top edge at origin.
func Text(l Layer, origin geom.Point, attrs state.TextAttributes) error {
	if attrs.TextContent == "" {
		return fmt.Errorf("%w: text field is empty", ErrInvalidAction)
	}
	colour := attrs.FillStyle
	if colour == "" {
		colour = attrs.StrokeStyle
	}
	return l.DrawText(origin, attrs.TextContent, TextStyle{
		Font:  attrs.Font,
		Size:  attrs.FontSize,
		Align: attrs.Align,
		Color: geom.ParseHexOrBlack(colour),
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
