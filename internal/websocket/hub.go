package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients per editing session and pushes
// recalculated results to them
type Hub struct {
	// Registered clients by session ID
	clients map[string]map[*Client]bool

	// Outbound messages addressed to a session
	broadcast chan envelope

	// Newest results pushed per session, sent to clients that connect late
	latest map[string]envelope

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed by Stop to end Run
	done     chan struct{}
	stopOnce sync.Once

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Logger
	logger *zerolog.Logger
}

// envelope carries an encoded message. revision is 0 for messages that are not
// session results; those are always delivered.
type envelope struct {
	sessionID string
	revision  int
	data      []byte
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Message types pushed to clients
const (
	MessageConnection    = "connection"
	MessageResults       = "results"
	MessageSessionClosed = "session_closed"
	MessagePong          = "pong"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound buffer per client
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for now
		// In production, you should validate the origin
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		latest:     make(map[string]envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.sendToSession(env)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client connection
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[*Client]bool)
	}
	h.clients[client.SessionID][client] = true

	// Track metrics
	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("session_id", client.SessionID).
		Str("remote_addr", client.RemoteAddr).
		Int("session_connections", len(h.clients[client.SessionID])).
		Msg("WebSocket client registered")

	// Send welcome message
	client.SendMessage(Message{
		Type:      MessageConnection,
		SessionID: client.SessionID,
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	})

	// Current state so the client doesn't wait for the next change. A result
	// pushed while the client was connecting may be newer than its snapshot.
	if latest, ok := h.latest[client.SessionID]; ok && latest.revision > client.revision {
		if client.SendMessage(json.RawMessage(latest.data)) {
			client.revision = latest.revision
		}
	} else if client.initial != nil {
		client.SendMessage(Message{
			Type:      MessageResults,
			SessionID: client.SessionID,
			Data:      client.initial,
			Timestamp: time.Now(),
		})
	}
	client.initial = nil
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeLocked(client)
}

// removeLocked drops the client and closes its channel. Chamar com o lock de escrita.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.Send)

	// Track metrics
	metrics.Get().DecrementWSConnection()

	// Remove session entry if no more clients
	if len(clients) == 0 {
		delete(h.clients, client.SessionID)
	}

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("remaining_connections", len(clients)).
		Msg("WebSocket client unregistered")
}

// sendToSession delivers an envelope to every client of a session. Results older
// than what a client already received are skipped, so clients never go back to a
// stale revision. Slow clients whose buffer is full are disconnected.
func (h *Hub) sendToSession(env envelope) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	sessionID := env.sessionID
	for client := range h.clients[sessionID] {
		if env.revision > 0 && env.revision <= client.revision {
			h.logger.Debug().
				Str("session_id", sessionID).
				Int("revision", env.revision).
				Int("client_revision", client.revision).
				Msg("Skipping stale results")
			continue
		}
		select {
		case client.Send <- env.data:
			if env.revision > 0 {
				client.revision = env.revision
			}
			// Track outgoing message
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("session_id", sessionID).
				Msg("Failed to send message to client, closing connection")
			h.removeLocked(client)
		}
	}
}

// SendToSession sends a message to all connections of a session synchronously
func (h *Hub) SendToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to marshal message for session")
		return
	}
	h.sendToSession(envelope{sessionID: sessionID, data: data})
}

// BroadcastResults queues a settled session snapshot for every client of the
// session. Snapshots may arrive out of order from concurrent mutations; a revision
// older than the newest one seen for the session is dropped.
func (h *Hub) BroadcastResults(sessionID string, revision int, snapshot interface{}) {
	data, err := json.Marshal(Message{
		Type:      MessageResults,
		SessionID: sessionID,
		Data:      snapshot,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to marshal results message")
		return
	}

	env := envelope{sessionID: sessionID, revision: revision, data: data}

	h.mutex.Lock()
	if latest, ok := h.latest[sessionID]; ok && latest.revision >= revision {
		h.mutex.Unlock()
		return
	}
	h.latest[sessionID] = env
	connected := len(h.clients[sessionID]) > 0
	h.mutex.Unlock()

	if !connected {
		return
	}

	select {
	case h.broadcast <- env:
	case <-h.done:
	}
}

// CloseSession notifies and disconnects every client of a deleted or expired session
func (h *Hub) CloseSession(sessionID, reason string) {
	h.SendToSession(sessionID, Message{
		Type:      MessageSessionClosed,
		SessionID: sessionID,
		Data:      map[string]string{"reason": reason},
		Timestamp: time.Now(),
	})

	h.mutex.Lock()
	defer h.mutex.Unlock()

	delete(h.latest, sessionID)
	for client := range h.clients[sessionID] {
		h.removeLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// GetConnectedSessions returns the IDs of sessions with at least one client
func (h *Hub) GetConnectedSessions() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetSessionConnectionCount returns the number of connections for a specific session
func (h *Hub) GetSessionConnectionCount(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients[sessionID])
}

// RegisterClient is a public method to register a client (for testing)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient is a public method to unregister a client (for testing)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
