package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// Session the client follows
	SessionID  string
	RemoteAddr string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time

	// Snapshot sent right after the welcome message
	initial interface{}

	// Newest results revision delivered to this client
	revision int
}

// NewClient creates a client without a connection, used by tests and by ServeWS.
// revision is the revision of the initial snapshot.
func NewClient(hub *Hub, sessionID string, revision int, initial interface{}) *Client {
	return &Client{
		Send:        make(chan []byte, sendBuffer),
		SessionID:   sessionID,
		Hub:         hub,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
		initial:     initial,
		revision:    revision,
	}
}

// ServeWS upgrades the request and attaches the connection to a session.
// The caller must have checked that the session exists.
func (h *Hub) ServeWS(c *gin.Context, sessionID string, revision int, initial interface{}) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(h, sessionID, revision, initial)
	client.conn = conn
	client.RemoteAddr = c.ClientIP()

	logger.AuditWebSocket(c.Request.Context(), logger.AuditActionWSConnect, sessionID, client.RemoteAddr, nil)

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.conn.Close()
		logger.AuditWebSocket(context.Background(), logger.AuditActionWSDisconnect, c.SessionID, c.RemoteAddr, map[string]interface{}{
			"connected_seconds": time.Since(c.ConnectedAt).Seconds(),
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("session_id", c.SessionID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		// Handle incoming messages from client
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("session_id", c.SessionID).
			Msg("Failed to unmarshal client message")
		return
	}

	switch msg.Type {
	case "ping":
		c.SendMessage(Message{
			Type:      MessagePong,
			SessionID: c.SessionID,
			Timestamp: time.Now(),
		})

	default:
		c.Hub.logger.Debug().
			Str("session_id", c.SessionID).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
	}
}

// SendMessage queues a message for this client. Returns false when the buffer is full.
func (c *Client) SendMessage(message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("session_id", c.SessionID).
			Msg("Failed to marshal message for client")
		return false
	}

	select {
	case c.Send <- data:
		return true
	default:
		c.Hub.logger.Warn().
			Str("session_id", c.SessionID).
			Msg("Client send channel is full, dropping message")
		return false
	}
}

// GetConnectionInfo returns information about this client connection
func (c *Client) GetConnectionInfo() map[string]interface{} {
	return map[string]interface{}{
		"session_id":   c.SessionID,
		"remote_addr":  c.RemoteAddr,
		"connected_at": c.ConnectedAt,
		"last_ping":    c.LastPing,
	}
}
