package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hearthwise/hearth-core/internal/control"
	"github.com/hearthwise/hearth-core/internal/infrastructure/config"
	"github.com/hearthwise/hearth-core/internal/infrastructure/logging"
)

const (
	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 64

	wsWriteTimeout      = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 60 * time.Second
)

// WSMessage is the envelope for messages sent to WebSocket clients.
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub manages WebSocket connections and fans committed state changes out
// to each device owner's clients. It satisfies control.EventSink.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

// WSClient is one connected WebSocket client, bound to a user.
type WSClient struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware.
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a client. Only the goroutine that removes the
// client from the map closes the send channel, preventing double-close
// panics during shutdown.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// DeviceStateChanged delivers a committed state change to the owner's
// connected clients only.
func (h *Hub) DeviceStateChanged(event control.StateEvent) {
	msg := WSMessage{
		Type:      "device.state",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   event,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshalling state event", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		if client.userID == event.OwnerID {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.trySend(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// trySend queues a message without blocking; slow clients drop messages
// rather than stalling the hub. The recover absorbs a send on a channel
// that Unregister closed between the snapshot and this send.
func (c *WSClient) trySend(data []byte) {
	defer func() { _ = recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// handleWebSocket authenticates the access token from the query string
// and upgrades the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeUnauthorized(w, "missing token")
		return
	}
	userID, err := s.auth.Authenticate(token)
	if err != nil {
		writeUnauthorized(w, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, wsSendBufferSize),
		userID: userID,
	}
	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump discards inbound frames; the feed is one-way. It exists to
// process control messages (close, pong) and detect dead connections.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	// The deadline spans a full ping cycle plus the grace period, so a
	// connection is only dropped after missing a pong.
	deadline := defaultPongTimeout
	if cfg.PingInterval > 0 && cfg.PongTimeout > 0 {
		deadline = time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	}
	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}

	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(deadline))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the send channel and keeps the connection alive with
// periodic pings.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := defaultPingInterval
	if cfg.PingInterval > 0 {
		pingInterval = time.Duration(cfg.PingInterval) * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
