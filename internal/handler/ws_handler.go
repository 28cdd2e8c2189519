package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/imposterparty/api/internal/auth"
	"github.com/imposterparty/api/internal/service"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware; tighten in production
	},
}

// WSHandler upgrades HTTP requests to WebSocket sessions and pumps events
// between the connection and the orchestrator.
type WSHandler struct {
	hub          *Hub
	jwtMgr       *auth.JWTManager
	orchestrator *service.Orchestrator
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, orchestrator *service.Orchestrator) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, orchestrator: orchestrator}
}

// ServeWS handles GET /ws — upgrades to WebSocket. Auth via ?token= query
// parameter (WebSocket can't send headers). A missing or invalid token
// degrades the session to guest rather than rejecting the connection;
// guests can play, they just have no account features.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ident := h.jwtMgr.VerifyHandshake(r.URL.Query().Get("token"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	sessionID := uuid.NewString()
	client := &WSConn{
		conn:      conn,
		sessionID: sessionID,
		userID:    ident.UserID,
		send:      make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)
	h.orchestrator.Connect(sessionID, ident)

	// Tell the client its session ID so it can correlate room payloads.
	if welcome, ok := marshalEvent("connected", map[string]string{"sessionId": sessionID}); ok {
		client.send <- welcome
	}

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("sessionId", sessionID).Bool("guest", ident.IsAnonymous).
		Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads client events and hands them to the orchestrator.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.orchestrator.Disconnect(c.sessionID)
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("sessionId", c.sessionID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("sessionId", c.sessionID).Msg("WebSocket unexpected close")
			}
			break
		}

		var env service.Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			continue
		}
		h.orchestrator.Dispatch(c.sessionID, env)
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
