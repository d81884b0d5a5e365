package net

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"LocalBoard/internal/state"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 20
	sendQueueSize  = 256
)

// Client is one board's connection to a hub. Sends never block: when the
// queue is full or the connection is gone the frame is dropped.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger
	clock  state.Clock

	mu     sync.RWMutex
	self   state.User
	send   chan []byte
	closed bool

	connected atomic.Bool
	done      chan struct{}
}

// Dial connects to the hub at url and announces the user name.
func Dial(ctx context.Context, url, name string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:   conn,
		logger: logger,
		self:   state.User{UserName: name},
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
	c.connected.Store(true)
	go c.writePump()

	if err := c.enqueue(Message{Kind: UserConnected, User: &state.User{UserName: name}}); err != nil {
		c.Close()
		return nil, err
	}
	logger.Info("connected", "url", url, "name", name)
	return c, nil
}

// IsConnected reports whether frames can still be sent.
func (c *Client) IsConnected() bool { return c.connected.Load() }

// Self is the local user as acknowledged by the hub. UserID is empty until
// the acknowledgement arrives.
func (c *Client) Self() state.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.self
}

// SendCommand sends cmd to every peer. It is fire-and-forget: a command
// that cannot be queued is dropped.
func (c *Client) SendCommand(cmd state.Command) {
	if err := c.enqueue(Message{Kind: UserCommand, Command: &cmd, Seq: c.clock.Tick()}); err != nil {
		c.logger.Debug("command dropped", "tool", cmd.ToolKind, "err", err)
	}
}

// SendMessage sends a chat message.
func (c *Client) SendMessage(text string) error {
	return c.enqueue(Message{Kind: UserMessage, Text: text})
}

func (c *Client) enqueue(m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || !c.connected.Load() {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send queue full")
	}
}

// Run reads frames until the connection ends or ctx is cancelled and hands
// them to h. Echoes of our own frames are filtered. It returns nil when the
// connection was closed locally.
func (c *Client) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.connected.Store(false)
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		m, err := Decode(data)
		if err != nil {
			c.logger.Warn("invalid message from hub", "err", err)
			continue
		}
		if m.Kind == UserConnectionAcknowledged && m.User != nil {
			c.mu.Lock()
			c.self = *m.User
			c.mu.Unlock()
			c.logger.Debug("acknowledged", "id", m.User.UserID, "users", len(m.Users))
		}
		if self := c.Self().UserID; self != "" && m.Kind != UserConnectionAcknowledged && m.UserID == self {
			continue
		}
		h.HandleMessage(m)
	}
}

// Close says goodbye to the hub and shuts the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.connected.Load() {
		if data, err := Encode(Message{Kind: UserDisconnected, UserID: c.self.UserID}); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	select {
	case <-c.done:
	case <-time.After(writeWait):
	}
	c.connected.Store(false)
	return c.conn.Close()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("write failed", "err", err)
				c.connected.Store(false)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.connected.Store(false)
				return
			}
		}
	}
}
