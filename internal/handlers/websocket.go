package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsMessage is the wire format pushed to connected clients
type wsMessage struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	InstanceID string                 `json:"instance_id"`
}

// WebSocketHandler broadcasts research progress and session update events
// to connected clients. Writes to one connection are serialized with a
// per-connection mutex; a failed write drops the client.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string // Clients use this to detect server restarts
}

// NewWebSocketHandler creates the handler and subscribes it to the event stream
func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger) (*WebSocketHandler, error) {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	for _, eventType := range []interfaces.EventType{
		interfaces.EventResearchProgress,
		interfaces.EventSessionUpdated,
	} {
		if err := eventService.Subscribe(eventType, h.handleEvent); err != nil {
			return nil, err
		}
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")
	return h, nil
}

// ServeHTTP handles GET /ws upgrade requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client connected")

	h.writeMessage(conn, wsMessage{
		Type:       "connected",
		Timestamp:  time.Now(),
		InstanceID: h.serverInstanceID,
	})

	// Read loop: the client sends nothing we act on, but reading detects
	// disconnects and services control frames.
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleEvent fans an event out to every connected client
func (h *WebSocketHandler) handleEvent(ctx context.Context, event interfaces.Event) error {
	message := wsMessage{
		Type:       string(event.Type),
		SessionID:  event.SessionID,
		Payload:    event.Payload,
		Timestamp:  event.Timestamp,
		InstanceID: h.serverInstanceID,
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.writeMessage(conn, message)
	}

	return nil
}

// writeMessage sends a message to one client, dropping it on failure
func (h *WebSocketHandler) writeMessage(conn *websocket.Conn, message wsMessage) {
	h.mu.RLock()
	connMu, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	connMu.Lock()
	err := conn.WriteJSON(message)
	connMu.Unlock()

	if err != nil {
		h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
		h.removeClient(conn)
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client disconnected")
}

// Shutdown closes all client connections
func (h *WebSocketHandler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}

	h.logger.Debug().Msg("WebSocket handler shut down")
}
