// Package board is the application core. It owns the surface, the history,
// the tools and the peers, and serialises every input onto them.
package board

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/history"
	"LocalBoard/internal/net"
	"LocalBoard/internal/peer"
	"LocalBoard/internal/raster"
	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
	"LocalBoard/internal/tools"
)

// Default canvas size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

const maxChatLines = 500

// Sender carries local commands and chat to the other boards.
type Sender interface {
	SendCommand(cmd state.Command)
	SendMessage(text string) error
}

// Options configure a Board.
type Options struct {
	Width, Height int
	// UserName is shown until the hub acknowledges us.
	UserName string
	Store    store.Store
	Logger   *log.Logger
	// Notifier receives short user-facing notices. It is called with the
	// board locked and must not call back into it.
	Notifier history.Notifier
}

// Cursor is where a peer's pointer was last seen.
type Cursor struct {
	User     state.User
	Position geom.Point
}

// ChatLine is one chat message.
type ChatLine struct {
	From  state.User
	Text  string
	Local bool
	At    time.Time
}

// KeyEvent is a key press with its modifiers. Ctrl is set for Control or
// Command.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
}

// Board is safe for concurrent use.
type Board struct {
	mu     sync.Mutex
	ctx    context.Context
	logger *log.Logger

	surface *raster.Surface
	history *history.History
	attrs   *tools.AttributeStore
	tools   *tools.Manager
	peers   *peer.Interpreter
	seqs    state.Sequences

	sender    Sender
	self      state.User
	cursors   cursorSet
	chat      []ChatLine
	textFocus bool
	notifier  history.Notifier

	listeners []func()
}

// New creates a board and restores the saved session from opts.Store.
func New(ctx context.Context, opts Options) (*Board, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	surface, err := raster.New(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}

	b := &Board{
		ctx:      ctx,
		logger:   opts.Logger,
		surface:  surface,
		self:     state.User{UserName: opts.UserName},
		cursors:  make(cursorSet),
		notifier: opts.Notifier,
	}
	b.history = history.New(surface, opts.Store,
		history.WithLogger(opts.Logger),
		history.WithNotifier(history.NotifierFunc(b.notify)),
		history.WithContext(ctx),
	)
	if err := b.history.Restore(); err != nil {
		return nil, err
	}
	b.attrs = tools.LoadAttributes(ctx, opts.Store, opts.Logger)
	b.tools = tools.NewManager(tools.Env{
		Surface:    surface,
		Bounds:     surface.Bounds(),
		Recorder:   b.history,
		Attributes: b.attrs,
		Logger:     opts.Logger,
	})
	b.peers = peer.New(surface, b.history, b.cursors, opts.Logger)
	return b, nil
}

func (b *Board) notify(msg string) {
	b.logger.Info(msg)
	if b.notifier != nil {
		b.notifier.Notify(msg)
	}
}

// OnChange registers fn to run after anything visible changed. fn runs
// without the board locked.
func (b *Board) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

func (b *Board) changed() {
	b.mu.Lock()
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// SetNotifier replaces where notices go.
func (b *Board) SetNotifier(n history.Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifier = n
}

// SetSender connects the board to the other boards. nil works offline.
func (b *Board) SetSender(s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sender = s
}

func (b *Board) send(cmd *state.Command) {
	if cmd == nil {
		return
	}
	b.mu.Lock()
	s := b.sender
	b.mu.Unlock()
	if s != nil {
		s.SendCommand(*cmd)
	}
}

// Surface is the board's canvas.
func (b *Board) Surface() *raster.Surface { return b.surface }

// Composite renders the committed layer with every preview on top.
func (b *Board) Composite() *image.RGBA { return b.surface.Composite() }

func (b *Board) pointer(fn func(tools.PointerEvent) *state.Command, ev tools.PointerEvent) {
	b.mu.Lock()
	cmd := fn(ev)
	b.mu.Unlock()
	b.send(cmd)
	b.changed()
}

// PointerDown starts a gesture with the active tool.
func (b *Board) PointerDown(ev tools.PointerEvent) { b.pointer(b.tools.Down, ev) }

// PointerMove continues a gesture or just moves the cursor.
func (b *Board) PointerMove(ev tools.PointerEvent) { b.pointer(b.tools.Move, ev) }

// PointerUp finishes a gesture.
func (b *Board) PointerUp(ev tools.PointerEvent) { b.pointer(b.tools.Up, ev) }

// Blur abandons the gesture in progress when the surface loses focus.
func (b *Board) Blur() {
	b.mu.Lock()
	b.tools.Blur()
	b.mu.Unlock()
	b.changed()
}

// SelectTool switches the active tool.
func (b *Board) SelectTool(kind state.ToolKind) error {
	b.mu.Lock()
	err := b.tools.Select(kind)
	b.mu.Unlock()
	if err == nil {
		b.changed()
	}
	return err
}

// ActiveTool is the kind of the selected tool.
func (b *Board) ActiveTool() state.ToolKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tools.Active()
}

// Attributes returns the current attributes of kind.
func (b *Board) Attributes(kind state.ToolKind) state.Attributes {
	return b.attrs.Get(kind)
}

// FieldValue is the current value of one attribute of the active tool.
func (b *Board) FieldValue(field string) (string, error) {
	kind := b.ActiveTool()
	return tools.FieldValue(kind, b.attrs.Get(kind), field)
}

// ChangeAttribute edits one attribute of the active tool and saves it.
func (b *Board) ChangeAttribute(field, raw string) error {
	kind := b.ActiveTool()
	if _, err := b.attrs.Change(kind, field, raw); err != nil {
		return err
	}
	b.changed()
	return nil
}

// Undo reverts the last action. An empty stack only produces a notice.
func (b *Board) Undo() error {
	b.mu.Lock()
	b.tools.Blur()
	err := b.history.Undo()
	b.mu.Unlock()
	b.changed()
	return err
}

// Redo re-applies the last undone action.
func (b *Board) Redo() error {
	b.mu.Lock()
	b.tools.Blur()
	err := b.history.Redo()
	b.mu.Unlock()
	b.changed()
	return err
}

// CanUndo reports whether there is an action to undo.
func (b *Board) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanUndo()
}

// CanRedo reports whether there is an action to redo.
func (b *Board) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanRedo()
}

// History returns copies of the undo and redo stacks.
func (b *Board) History() history.Stacks {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Snapshot()
}

// Clear wipes the canvas for everyone. It can be undone.
func (b *Board) Clear() {
	b.mu.Lock()
	cmd := b.tools.Clear()
	b.mu.Unlock()
	b.send(&cmd)
	b.changed()
}

// Reset forgets the whole local history and clears the canvas without
// telling the peers.
func (b *Board) Reset() {
	b.mu.Lock()
	b.tools.Blur()
	b.history.Reset()
	b.mu.Unlock()
	b.changed()
}

// SetTextFocus tells the board whether a text input has focus, which
// disables the keyboard shortcuts.
func (b *Board) SetTextFocus(focused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textFocus = focused
}

// HandleKey runs the shortcut bound to ev and reports whether it was
// handled, in which case the default action should be suppressed.
//
//	Ctrl/Cmd+Z        undo
//	Ctrl/Cmd+Shift+Z  redo
//	Ctrl/Cmd+R        redo
func (b *Board) HandleKey(ev KeyEvent) bool {
	b.mu.Lock()
	focused := b.textFocus
	b.mu.Unlock()
	if focused || !ev.Ctrl {
		return false
	}
	var err error
	switch strings.ToLower(ev.Key) {
	case "z":
		if ev.Shift {
			err = b.Redo()
		} else {
			err = b.Undo()
		}
	case "r":
		err = b.Redo()
	default:
		return false
	}
	if err != nil && !errors.Is(err, history.ErrNothingToUndo) && !errors.Is(err, history.ErrNothingToRedo) {
		b.logger.Warn("shortcut failed", "key", ev.Key, "err", err)
	}
	return true
}

// Self is the local user. Its id is empty until a hub acknowledged us.
func (b *Board) Self() state.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.self
}

// Users lists the connected peers, without ourselves.
func (b *Board) Users() []state.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peers.Users()
}

// Cursors returns the last known pointer of every peer.
func (b *Board) Cursors() []Cursor {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Cursor, 0, len(b.cursors))
	for _, c := range b.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.UserName < out[j].User.UserName })
	return out
}

// Chat returns the chat log, oldest first.
func (b *Board) Chat() []ChatLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ChatLine(nil), b.chat...)
}

// SendChat posts text to the chat.
func (b *Board) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	b.mu.Lock()
	s := b.sender
	b.appendChat(ChatLine{From: b.self, Text: text, Local: true, At: time.Now()})
	b.mu.Unlock()
	defer b.changed()
	if s == nil {
		return net.ErrNotConnected
	}
	return s.SendMessage(text)
}

func (b *Board) appendChat(line ChatLine) {
	b.chat = append(b.chat, line)
	if len(b.chat) > maxChatLines {
		b.chat = append([]ChatLine(nil), b.chat[len(b.chat)-maxChatLines:]...)
	}
}

// HandleMessage applies one frame from the hub.
func (b *Board) HandleMessage(m net.Message) {
	b.mu.Lock()
	b.handle(m)
	b.mu.Unlock()
	b.changed()
}

func (b *Board) handle(m net.Message) {
	switch m.Kind {
	case net.UserConnectionAcknowledged:
		if m.User != nil {
			b.self = *m.User
		}
		b.peers.AddMany(m.Users, b.self.UserID)
		b.logger.Info("joined board", "as", b.self.UserName, "peers", len(b.peers.Users()))
	case net.UserConnected:
		if m.User == nil || m.User.UserID == b.self.UserID {
			return
		}
		b.peers.Add(*m.User)
	case net.UserDisconnected:
		b.peers.Remove(m.UserID)
		b.seqs.Forget(m.UserID)
	case net.UserCommand:
		if m.Command == nil {
			return
		}
		if !b.seqs.Observe(m.UserID, m.Seq) {
			b.logger.Debug("command out of order", "user", m.UserID, "seq", m.Seq)
		}
		if err := b.peers.Handle(m.UserID, *m.Command); err != nil {
			b.logger.Debug("command ignored", "err", err)
		}
	case net.UserMessage:
		from, ok := b.peers.Lookup(m.UserID)
		if !ok {
			b.logger.Warn("message from unknown user", "id", m.UserID)
			return
		}
		b.appendChat(ChatLine{From: from, Text: m.Text, At: time.Now()})
	default:
		b.logger.Warn("unknown message kind", "kind", m.Kind)
	}
}

// cursorSet implements peer.Cursors. It is only touched with the board
// locked.
type cursorSet map[state.UserID]Cursor

func (c cursorSet) Move(user state.User, pos geom.Point) {
	c[user.UserID] = Cursor{User: user, Position: pos}
}

func (c cursorSet) Remove(id state.UserID) { delete(c, id) }
