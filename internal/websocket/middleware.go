package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// QueryTokenMiddleware copies the ?token= query parameter into the Authorization
// header. Browsers can't set headers on a WebSocket handshake, so the bearer
// middleware that runs next sees the token the same way as for REST calls.
func QueryTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// RequireUpgrade rejects plain HTTP calls to a WebSocket endpoint
func RequireUpgrade() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !websocketUpgradeRequested(c.Request) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Conexão WebSocket esperada",
				"code":    "WEBSOCKET_UPGRADE_REQUIRED",
			})
			return
		}
		c.Next()
	}
}

func websocketUpgradeRequested(r *http.Request) bool {
	return r.Header.Get("Upgrade") != "" && r.Header.Get("Sec-WebSocket-Key") != ""
}
