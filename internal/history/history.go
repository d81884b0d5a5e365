// Package history records the undo and redo stacks of committed Actions,
// persists them as one JSON blob and rebuilds the surface by replay.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
)

// Key is the store key of the history blob.
const Key = "history"

// Notices shown when an undo or redo has nothing to act on.
const (
	NoticeNothingToUndo = "Already the last change"
	NoticeNothingToRedo = "Already the newest change"
)

var (
	ErrEmptyAction   = errors.New("action has no commands")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type blob struct {
	UndoStack []state.Action `json:"undoStack"`
	RedoStack []state.Action `json:"redoStack"`
}

// Stacks is a copy of both stacks, oldest first.
type Stacks struct {
	Undo []state.Action
	Redo []state.Action
}

// History is not safe for concurrent use; the board serialises access.
type History struct {
	surface  draw.Surface
	kv       store.Store
	logger   *log.Logger
	notifier Notifier
	ctx      context.Context

	undo []state.Action
	redo []state.Action
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithNotifier sets where "nothing to undo/redo" notices go.
func WithNotifier(n Notifier) Option {
	return func(h *History) { h.notifier = n }
}

// WithContext sets the context used for store calls.
func WithContext(ctx context.Context) Option {
	return func(h *History) { h.ctx = ctx }
}

// New creates an empty history drawing onto surface and persisting to kv.
// Call Restore to load a previous session.
func New(surface draw.Surface, kv store.Store, opts ...Option) *History {
	h := &History{
		surface: surface,
		kv:      kv,
		logger:  log.Default(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Restore loads the persisted stacks and replays them. A blob that cannot
// be parsed or replayed resets everything; only a failing store read is
// returned as an error.
func (h *History) Restore() error {
	data, ok, err := h.kv.Get(h.ctx, Key)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return nil
	}
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		h.resetCorrupt(err)
		return nil
	}
	h.undo, h.redo = b.UndoStack, b.RedoStack
	if err := h.replayRecovering(); err != nil {
		h.resetCorrupt(err)
		return nil
	}
	h.logger.Debug("history restored", "undo", len(h.undo), "redo", len(h.redo))
	return nil
}

func (h *History) resetCorrupt(cause error) {
	h.logger.Warn("invalid data in history, removing all actions", "err", cause)
	h.Reset()
}

func (h *History) replayRecovering() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replay panicked: %v", r)
		}
	}()
	return h.ReplayAll()
}

// Do records a committed action. The caller has already drawn it.
func (h *History) Do(a state.Action) error {
	if a.Empty() {
		return ErrEmptyAction
	}
	h.undo = append(h.undo, a)
	h.redo = h.redo[:0]
	h.persist()
	return nil
}

// Undo removes the newest action and rebuilds the surface without it.
func (h *History) Undo() error {
	if !h.CanUndo() {
		h.notify(NoticeNothingToUndo)
		return ErrNothingToUndo
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, last)
	if err := h.ReplayAll(); err != nil {
		h.logger.Error("replay after undo", "err", err)
	}
	h.persist()
	return nil
}

// Redo re-applies the most recently undone action on top of the surface.
func (h *History) Redo() error {
	if !h.CanRedo() {
		h.notify(NoticeNothingToRedo)
		return ErrNothingToRedo
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.drawOne(next)
	h.undo = append(h.undo, next)
	h.persist()
	return nil
}

// ReplayAll clears the committed layer and draws the undo stack in order.
// Actions that cannot be drawn are logged and skipped; any other failure
// stops the replay.
func (h *History) ReplayAll() error {
	h.surface.Clear()
	for i, a := range h.undo {
		if err := draw.Action(h.surface, a); err != nil {
			if errors.Is(err, draw.ErrInvalidAction) {
				h.logger.Warn("skipping invalid action", "index", i, "tool", a.ToolKind, "err", err)
				continue
			}
			return fmt.Errorf("replay action %d (%s): %w", i, a.ToolKind, err)
		}
	}
	return nil
}

func (h *History) drawOne(a state.Action) {
	if err := draw.Action(h.surface, a); err != nil {
		h.logger.Warn("cannot draw action", "tool", a.ToolKind, "err", err)
	}
}

// Reset empties both stacks, forgets the persisted blob and clears the
// committed layer.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.surface.Clear()
	if err := h.kv.Delete(h.ctx, Key); err != nil {
		h.logger.Warn("remove history", "err", err)
	}
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Snapshot returns deep copies of both stacks.
func (h *History) Snapshot() Stacks {
	return Stacks{Undo: cloneAll(h.undo), Redo: cloneAll(h.redo)}
}

func cloneAll(in []state.Action) []state.Action {
	out := make([]state.Action, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func (h *History) persist() {
	b := blob{UndoStack: h.undo, RedoStack: h.redo}
	if b.UndoStack == nil {
		b.UndoStack = []state.Action{}
	}
	if b.RedoStack == nil {
		b.RedoStack = []state.Action{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		h.logger.Error("encode history", "err", err)
		return
	}
	if err := h.kv.Set(h.ctx, Key, data); err != nil {
		h.logger.Warn("save history", "err", err)
	}
}

func (h *History) notify(msg string) {
	h.logger.Info(msg)
	if h.notifier != nil {
		h.notifier.Notify(msg)
	}
}
