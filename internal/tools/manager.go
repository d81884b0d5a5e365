package tools

import (
	"fmt"

	"LocalBoard/internal/state"
)

// Manager owns one instance of every tool and routes pointer events to the
// active one.
type Manager struct {
	env    Env
	tools  map[state.ToolKind]Tool
	active Tool
}

// NewManager builds every tool with freehand active.
func NewManager(env Env) *Manager {
	m := &Manager{env: env, tools: make(map[state.ToolKind]Tool)}
	for _, t := range []Tool{
		NewFreehand(env),
		NewShape(env, state.ToolRectangle),
		NewShape(env, state.ToolEllipse),
		NewShape(env, state.ToolLine),
		NewFill(env),
		NewShape(env, state.ToolText),
		NewShape(env, state.ToolImage),
	} {
		m.tools[t.Kind()] = t
	}
	m.active = m.tools[state.ToolFreehand]
	return m
}

func (m *Manager) Active() state.ToolKind { return m.active.Kind() }

// Select hands input over to kind, abandoning any gesture of the old tool.
func (m *Manager) Select(kind state.ToolKind) error {
	t, ok := m.tools[kind]
	if !ok {
		return fmt.Errorf("no %q tool", kind)
	}
	if t == m.active {
		return nil
	}
	m.active.Blur()
	m.active = t
	m.env.logger().Debug("tool selected", "tool", kind)
	return nil
}

func (m *Manager) Down(ev PointerEvent) *state.Command { return m.active.Down(ev) }
func (m *Manager) Move(ev PointerEvent) *state.Command { return m.active.Move(ev) }
func (m *Manager) Up(ev PointerEvent) *state.Command   { return m.active.Up(ev) }
func (m *Manager) Blur()                               { m.active.Blur() }

// Clear wipes the committed layer and records it as an undoable action.
func (m *Manager) Clear() state.Command {
	m.active.Blur()
	m.env.Surface.Clear()
	cmd := state.Command{ToolKind: state.ToolClear, ShouldCommit: true, Attributes: state.ClearAttributes{}}
	a := state.NewAction(state.ToolClear, false)
	a.Append(cmd)
	m.env.record(a)
	return cmd
}
