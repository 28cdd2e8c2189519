package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/imposterparty/api/internal/service"
)

// WSConn wraps a WebSocket connection with its session identity and a
// buffered outbound queue. Slow consumers get messages dropped rather
// than stalling a broadcast.
type WSConn struct {
	conn      *websocket.Conn
	sessionID string
	userID    string // empty for guests
	send      chan []byte
}

// Hub tracks live connections by session and fans events out to sessions,
// room channels, users, or everyone. It implements service.Broadcaster.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*WSConn
	rooms    map[string]map[string]*WSConn // roomID -> sessionID -> conn
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*WSConn),
		rooms:    make(map[string]map[string]*WSConn),
	}
}

// Register adds a connection under its session ID.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[c.sessionID] = c
}

// Unregister removes a connection and its room memberships.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.sessionID] != c {
		return
	}
	delete(h.sessions, c.sessionID)
	for roomID, conns := range h.rooms {
		delete(conns, c.sessionID)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(c.send)
}

// JoinRoom subscribes a session to a room channel.
func (h *Hub) JoinRoom(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*WSConn)
	}
	h.rooms[roomID][sessionID] = c
}

// LeaveRoom unsubscribes a session from a room channel.
func (h *Hub) LeaveRoom(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, sessionID)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ToSession sends an event to one session.
func (h *Hub) ToSession(sessionID, event string, data any) {
	payload, ok := marshalEvent(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, found := h.sessions[sessionID]; found {
		c.trySend(payload)
	}
}

// ToRoom fans an event out to every session subscribed to a room.
func (h *Hub) ToRoom(roomID, event string, data any) {
	payload, ok := marshalEvent(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomID] {
		c.trySend(payload)
	}
}

// ToUser sends an event to all of a user's sessions.
func (h *Hub) ToUser(userID, event string, data any) {
	if userID == "" {
		return
	}
	payload, ok := marshalEvent(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.sessions {
		if c.userID == userID {
			c.trySend(payload)
		}
	}
}

// ToAll sends an event to every connected session.
func (h *Hub) ToAll(event string, data any) {
	payload, ok := marshalEvent(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.sessions {
		c.trySend(payload)
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomSubscriberCount returns the number of sessions on a room channel.
func (h *Hub) RoomSubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (c *WSConn) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
		log.Warn().Str("sessionId", c.sessionID).Msg("Dropping WebSocket message, buffer full")
	}
}

func marshalEvent(event string, data any) ([]byte, bool) {
	raw := json.RawMessage("null")
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			log.Error().Err(err).Str("event", event).Msg("Failed to marshal WebSocket event")
			return nil, false
		}
	}
	payload, err := json.Marshal(service.Envelope{Event: event, Data: raw})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to marshal WebSocket event")
		return nil, false
	}
	return payload, true
}
