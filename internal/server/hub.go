package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/session"
)

const (
	// clientBuffer is the per-client outbound queue depth. A client that
	// falls this far behind is dropped.
	clientBuffer = 64

	// writeWait bounds each WebSocket write.
	writeWait = 10 * time.Second
)

// client is one connected WebSocket subscriber.
type client struct {
	conn *websocket.Conn
	send chan session.Event
}

// Hub fans session events out to WebSocket clients.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	history []session.Event
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Publish sends an event to every connected client. Never blocks: clients
// whose queues are full are disconnected.
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, ev)

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("Dropping slow WebSocket client",
				zap.String("remote_addr", c.conn.RemoteAddr().String()))
			h.removeLocked(c)
		}
	}
}

// History returns a copy of every event published so far. New clients get
// the history replayed so late joiners see the whole session.
func (h *Hub) History() []session.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]session.Event, len(h.history))
	copy(out, h.history)
	return out
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers a connection and starts its write pump. The session history
// is queued first so the client catches up before live events.
func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan session.Event, clientBuffer),
	}

	h.mu.Lock()
	for _, ev := range h.history {
		select {
		case c.send <- ev:
		default:
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	return c
}

// remove unregisters a client and closes its connection.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// removeLocked removes a client while holding h.mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// writePump serializes events to one client until its queue closes.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for ev := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			h.logger.Debug("WebSocket write failed",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
				zap.Error(err))
			h.remove(c)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
