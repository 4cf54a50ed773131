package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame types pushed over the websocket.
const (
	// FrameGraph carries a full layout document after a recompute.
	FrameGraph = "graph"
	// FrameRefresh is sent by clients to request a recompute.
	FrameRefresh = "refresh"
	// FrameError reports a failed recompute.
	FrameError = "error"
)

// Frame is one websocket message. Data holds the JSON payload for the
// frame type, such as a layout document for FrameGraph.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsConn serializes writes to one websocket connection. Gorilla
// connections allow a single concurrent writer, and both the read loop
// and broadcasts write frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteFrame(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Hub tracks connected websocket clients and fans frames out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsConn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsConn]struct{})}
}

// Register adds a client and returns the client count after the add.
func (h *Hub) Register(c *wsConn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

// Unregister removes a client and returns the client count after the
// removal. Unknown clients are a no-op.
func (h *Hub) Unregister(c *wsConn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	return len(h.clients)
}

// Clients returns the connected client count.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends a frame to every connected client. Clients whose write
// fails are dropped and closed; the rest still receive the frame.
func (h *Hub) Broadcast(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.Unregister(c)
			c.Close()
		}
	}
	return nil
}

// CloseAll closes every connection and empties the hub.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*wsConn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
