package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub tracks WebSocket connections and fans snapshots out to every
// connection attached to a quiz session (the same session may be open
// in several tabs).
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection // connection_id -> connection
	sessions    map[uuid.UUID][]uuid.UUID // session_id -> []connection_id
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		sessions:    make(map[uuid.UUID][]uuid.UUID),
		logger:      logger,
	}
}

// Register adds a connection under a fresh connection ID.
func (h *Hub) Register(conn *Connection) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	h.connections[id] = conn
	h.mu.Unlock()

	h.logger.Debug().Str("connection_id", id.String()).Msg("connection registered")
	return id
}

// Unregister removes a connection and detaches it from any sessions.
func (h *Hub) Unregister(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
	}

	for sessionID, conns := range h.sessions {
		for i, id := range conns {
			if id == connID {
				h.sessions[sessionID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.sessions[sessionID]) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

// Attach associates a connection with a session for targeted broadcasts.
func (h *Hub) Attach(sessionID, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.sessions[sessionID]
	for _, id := range conns {
		if id == connID {
			return // already attached
		}
	}
	h.sessions[sessionID] = append(conns, connID)
}

// Detach removes a connection from a session.
func (h *Hub) Detach(sessionID, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.sessions[sessionID]
	for i, id := range conns {
		if id == connID {
			h.sessions[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
}

// BroadcastToSession sends a message to every connection on a session.
func (h *Hub) BroadcastToSession(sessionID uuid.UUID, msg Message) error {
	h.mu.RLock()
	conns := make([]uuid.UUID, len(h.sessions[sessionID]))
	copy(conns, h.sessions[sessionID])
	h.mu.RUnlock()

	var firstErr error
	for _, connID := range conns {
		if err := h.Send(connID, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Send delivers a message to a single connection.
func (h *Hub) Send(connID uuid.UUID, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[connID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

// Connection represents a WebSocket connection with send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 64),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	// Read deadline of 60 seconds, extended on pong.
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
