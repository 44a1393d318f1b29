// Package ws pushes live back-office events (new orders, quote requests,
// status changes) to connected admin browsers over WebSocket.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//	hub.Publish("order.placed", orderResource)
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var (
	upgraderMu sync.RWMutex
	upgrader   = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgraderMu.Lock()
	upgrader.CheckOrigin = fn
	upgraderMu.Unlock()
}

// Envelope is the JSON frame written to clients.
type Envelope struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump only services control frames; the feed is server → client.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub fans published events out to every connected client.
type Hub struct {
	clients    map[*client]bool
	count      atomic.Int64
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. It closes every client when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			logger.Info("ws: client connected", "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				logger.Info("ws: client disconnected", "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Publish encodes an event and queues it for every client. It never blocks;
// when the broadcast buffer is full the event is dropped.
func (h *Hub) Publish(eventType string, data any) {
	msg, err := json.Marshal(Envelope{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		logger.Error("ws: encode event", "type", eventType, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn("ws: broadcast buffer full, event dropped", "type", eventType)
	}
}

// Subscribe attaches an in-process listener that receives the same encoded
// envelopes as WebSocket clients. The channel is closed when cancel is
// called, when the listener falls behind, or when the hub stops.
func (h *Hub) Subscribe() (events <-chan []byte, cancel func()) {
	c := &client{hub: h, send: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
		return c.send, func() {}
	}

	var once sync.Once
	return c.send, func() {
		once.Do(func() {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		})
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Upgrade upgrades the request to a WebSocket and registers it with the hub.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) {
	upgraderMu.RLock()
	u := upgrader
	upgraderMu.RUnlock()

	conn, err := u.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Error("ws: upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- c
	go c.writePump()
	go c.readPump()
}
