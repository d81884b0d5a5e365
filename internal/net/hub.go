package net

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"LocalBoard/internal/state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HubOptions configure a Hub.
type HubOptions struct {
	Logger *log.Logger
	// CommandRate limits relayed commands per connection per second; zero
	// disables limiting.
	CommandRate  float64
	CommandBurst int
}

// Hub relays frames between every connected board. It assigns user ids,
// answers each join with the roster and forwards commands and chat to
// everyone except the sender.
type Hub struct {
	logger *log.Logger
	opts   HubOptions

	mu      sync.RWMutex
	clients map[state.UserID]*hubClient
	joined  int
}

type hubClient struct {
	hub     *Hub
	conn    *websocket.Conn
	user    state.User
	send    chan []byte
	limiter *rate.Limiter
}

// NewHub creates an empty hub.
func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Hub{
		logger:  opts.Logger,
		opts:    opts,
		clients: make(map[state.UserID]*hubClient),
	}
}

// Router serves the websocket endpoint and a small read-only API.
func (h *Hub) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", h.serveWS)
	r.Get("/users", h.serveUsers)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return r
}

// Users lists connected users sorted by name.
func (h *Hub) Users() []state.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rosterLocked()
}

func (h *Hub) rosterLocked() []state.User {
	users := make([]state.User, 0, len(h.clients))
	for _, c := range h.clients {
		users = append(users, c.user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].UserName != users[j].UserName {
			return users[i].UserName < users[j].UserName
		}
		return users[i].UserID < users[j].UserID
	})
	return users
}

// Close disconnects everyone.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.conn.Close()
	}
}

func (h *Hub) serveUsers(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Users()); err != nil {
		h.logger.Warn("encode users", "err", err)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	c := &hubClient{
		hub:  h,
		conn: conn,
		user: state.User{UserID: uuid.NewString()},
		send: make(chan []byte, sendQueueSize),
	}
	if h.opts.CommandRate > 0 {
		burst := h.opts.CommandBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(h.opts.CommandRate), burst)
	}
	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *hubClient, name string) {
	h.mu.Lock()
	h.joined++
	if name == "" {
		name = fmt.Sprintf("guest-%d", h.joined)
	}
	c.user.UserName = name
	h.clients[c.user.UserID] = c
	roster := h.rosterLocked()
	h.mu.Unlock()

	h.logger.Info("user connected", "user", name, "id", c.user.UserID, "addr", c.conn.RemoteAddr())
	user := c.user
	c.deliver(Message{Kind: UserConnectionAcknowledged, User: &user, Users: roster})
	h.broadcast(Message{Kind: UserConnected, User: &user}, c)
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[c.user.UserID]
	delete(h.clients, c.user.UserID)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(c.send)
	h.logger.Info("user disconnected", "user", c.user.UserName, "id", c.user.UserID)
	h.broadcast(Message{Kind: UserDisconnected, UserID: c.user.UserID}, nil)
}

// broadcast sends m to every client except exclude. A client whose queue
// is full is too slow to keep in sync and gets disconnected.
func (h *Hub) broadcast(m Message, exclude *hubClient) {
	data, err := Encode(m)
	if err != nil {
		h.logger.Error("encode broadcast", "kind", m.Kind, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c == exclude {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("send queue full, dropping client", "user", c.user.UserName)
			c.conn.Close()
		}
	}
}

func (c *hubClient) deliver(m Message) {
	data, err := Encode(m)
	if err != nil {
		c.hub.logger.Error("encode message", "kind", m.Kind, "err", err)
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.user.UserID]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *hubClient) readPump() {
	registered := false
	defer func() {
		if registered {
			c.hub.unregister(c)
		} else {
			close(c.send)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	logger := c.hub.logger
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket closed", "id", c.user.UserID, "err", err)
			}
			return
		}
		m, err := Decode(data)
		if err != nil {
			logger.Warn("invalid message", "id", c.user.UserID, "err", err)
			continue
		}

		if !registered {
			if m.Kind != UserConnected {
				logger.Warn("message before join", "kind", m.Kind)
				continue
			}
			name := ""
			if m.User != nil {
				name = m.User.UserName
			}
			c.hub.register(c, name)
			registered = true
			continue
		}

		switch m.Kind {
		case UserCommand:
			if m.Command == nil {
				continue
			}
			// Commit frames finish a shape, fill or clear and are never dropped.
			if c.limiter != nil && !m.Command.ShouldCommit && !c.limiter.Allow() {
				logger.Debug("rate limited", "user", c.user.UserName)
				continue
			}
			c.hub.broadcast(Message{Kind: UserCommand, UserID: c.user.UserID, Command: m.Command, Seq: m.Seq}, c)
		case UserMessage:
			c.hub.broadcast(Message{Kind: UserMessage, UserID: c.user.UserID, Text: m.Text}, c)
		case UserDisconnected:
			return
		default:
			logger.Warn("unknown message kind", "kind", m.Kind, "user", c.user.UserName)
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
