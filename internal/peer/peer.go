// Package peer replays the command streams of remote users onto the local
// surface and keeps the roster of who is connected.
package peer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// ErrUnknownUser is returned for commands from a user not in the roster.
var ErrUnknownUser = errors.New("unknown user")

// Recorder receives the Actions peers complete.
type Recorder interface {
	Do(a state.Action) error
}

// Cursors shows where each peer's pointer is.
type Cursors interface {
	Move(user state.User, pos geom.Point)
	Remove(id state.UserID)
}

// previewRemover is implemented by surfaces that can drop a preview layer.
type previewRemover interface {
	RemovePreview(owner string)
}

type remote struct {
	user    state.User
	seen    bool
	last    state.Command
	pending state.Action
}

// Interpreter tracks the drawing state of every remote user. It is not safe
// for concurrent use; the board serialises access.
type Interpreter struct {
	surface  draw.Surface
	recorder Recorder
	cursors  Cursors
	logger   *log.Logger
	peers    map[state.UserID]*remote
}

// New creates an interpreter with an empty roster. cursors may be nil.
func New(surface draw.Surface, recorder Recorder, cursors Cursors, logger *log.Logger) *Interpreter {
	if logger == nil {
		logger = log.Default()
	}
	return &Interpreter{
		surface:  surface,
		recorder: recorder,
		cursors:  cursors,
		logger:   logger,
		peers:    make(map[state.UserID]*remote),
	}
}

// Add puts user on the roster. Re-adding a known user keeps its state and
// only updates the name.
func (in *Interpreter) Add(user state.User) {
	if p, ok := in.peers[user.UserID]; ok {
		p.user = user
		return
	}
	in.peers[user.UserID] = &remote{user: user}
	in.logger.Info("user joined", "user", user.UserName, "id", user.UserID)
}

// AddMany adds the roster received on connect, skipping ourselves.
func (in *Interpreter) AddMany(users []state.User, self state.UserID) {
	for _, u := range users {
		if u.UserID == self {
			continue
		}
		in.Add(u)
	}
}

// Remove forgets user, its cursor, its preview and any stroke it left open.
func (in *Interpreter) Remove(id state.UserID) {
	p, ok := in.peers[id]
	if !ok {
		return
	}
	delete(in.peers, id)
	if len(p.pending.Commands) > 0 {
		in.logger.Debug("dropping unfinished stroke", "user", p.user.UserName, "commands", len(p.pending.Commands))
	}
	in.surface.ClearPreview(id)
	if r, ok := in.surface.(previewRemover); ok {
		r.RemovePreview(id)
	}
	if in.cursors != nil {
		in.cursors.Remove(id)
	}
	in.logger.Info("user left", "user", p.user.UserName, "id", id)
}

// Users returns the roster sorted by name.
func (in *Interpreter) Users() []state.User {
	out := make([]state.User, 0, len(in.peers))
	for _, p := range in.peers {
		out = append(out, p.user)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName != out[j].UserName {
			return out[i].UserName < out[j].UserName
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Lookup returns the roster entry for id.
func (in *Interpreter) Lookup(id state.UserID) (state.User, bool) {
	p, ok := in.peers[id]
	if !ok {
		return state.User{}, false
	}
	return p.user, true
}

// Handle applies one command from userID. The first command of a peer only
// establishes its position.
func (in *Interpreter) Handle(userID state.UserID, cmd state.Command) error {
	p, ok := in.peers[userID]
	if !ok {
		in.logger.Warn("command from unknown user", "id", userID)
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	defer func() {
		p.seen = true
		p.last = cmd
		if in.cursors != nil {
			in.cursors.Move(p.user, cmd.Position)
		}
	}()
	if !p.seen {
		return nil
	}

	if cmd.ToolKind != state.ToolFreehand {
		in.seal(p)
	}
	switch cmd.ToolKind {
	case state.ToolFreehand:
		in.freehand(p, cmd)
	case state.ToolRectangle, state.ToolEllipse, state.ToolLine, state.ToolText:
		in.shape(p, cmd)
	case state.ToolFill, state.ToolClear:
		if cmd.ShouldCommit {
			in.commit(p, cmd)
		}
	case state.ToolImage:
		// Images are local-only; the command just moves the cursor.
	}
	return nil
}

func (in *Interpreter) freehand(p *remote, cmd state.Command) {
	if !cmd.IsDragging {
		in.seal(p)
		return
	}
	continuing := p.last.ToolKind == state.ToolFreehand && p.last.IsDragging && len(p.pending.Commands) > 0
	if !continuing {
		p.pending = state.NewAction(state.ToolFreehand, true)
		p.pending.Append(cmd)
		return
	}
	if err := draw.Segment(in.surface.Committed(), p.last.Position, cmd); err != nil {
		in.logger.Warn("peer segment", "user", p.user.UserName, "err", err)
		return
	}
	p.pending.Append(cmd)
}

// seal records the peer's open stroke once it has a drawable path.
func (in *Interpreter) seal(p *remote) {
	if len(p.pending.Commands) >= 2 {
		in.record(p, p.pending)
	}
	p.pending = state.Action{}
}

func (in *Interpreter) shape(p *remote, cmd state.Command) {
	owner := p.user.UserID
	switch {
	case cmd.ShouldCommit:
		in.surface.ClearPreview(owner)
		in.commit(p, cmd)
	case cmd.IsDragging:
		in.surface.ClearPreview(owner)
		if err := draw.Command(in.surface, in.surface.Preview(owner), cmd); err != nil {
			in.logger.Debug("peer preview not drawn", "user", p.user.UserName, "err", err)
		}
	case p.last.IsDragging:
		// The drag ended without a commit, e.g. the peer's window lost focus.
		in.surface.ClearPreview(owner)
	}
}

func (in *Interpreter) commit(p *remote, cmd state.Command) {
	if attrs, ok := cmd.Attributes.(state.FillAttributes); ok && cmd.ToolKind == state.ToolFill {
		if changed, _ := draw.Fill(in.surface.Committed(), cmd.Position, attrs); changed == 0 {
			return
		}
		a := state.NewAction(state.ToolFill, true)
		a.Append(cmd)
		in.record(p, a)
		return
	}
	if err := draw.Command(in.surface, in.surface.Committed(), cmd); err != nil {
		in.logger.Warn("peer command not drawn", "user", p.user.UserName, "tool", cmd.ToolKind, "err", err)
		return
	}
	a := state.NewAction(cmd.ToolKind, true)
	a.Append(cmd)
	in.record(p, a)
}

func (in *Interpreter) record(p *remote, a state.Action) {
	if err := in.recorder.Do(a); err != nil {
		in.logger.Warn("peer action not recorded", "user", p.user.UserName, "err", err)
	}
}
