package handler

import (
	"net/http"

	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/cleberrangel/dimensionamento-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub     *websocket.Hub
	service *service.SizingService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub, svc *service.SizingService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		service: svc,
	}
}

// HandleConnection handles WebSocket connection upgrades for a session.
// The current state is pushed right after the welcome message.
// @Summary      Conexão WebSocket da sessão
// @Tags         sessions
// @Param        id path string true "ID da sessão"
// @Router       /api/v1/sessions/{id}/ws [get]
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	view, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.ServeWS(c, sessionID, view.Revision, view)
}

// GetConnectionStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections":  h.hub.GetConnectionCount(),
		"connected_sessions": h.hub.GetConnectedSessions(),
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
