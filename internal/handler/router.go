package handler

import (
	"github.com/cleberrangel/dimensionamento-api/internal/middleware"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/cleberrangel/dimensionamento-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// RouterConfig reúne as dependências das rotas
type RouterConfig struct {
	Service     *service.SizingService
	Hub         *websocket.Hub
	TokenAPI    string
	RateLimiter *middleware.RateLimiter
	Version     string
}

// NewRouter monta o router com as rotas públicas e as protegidas por token
func NewRouter(cfg RouterConfig) *gin.Engine {
	sizingHandler := NewSizingHandler(cfg.Service)
	healthHandler := NewHealthHandler(cfg.Service, cfg.Hub, cfg.Version)

	var wsHandler *WebSocketHandler
	if cfg.Hub != nil {
		wsHandler = NewWebSocketHandler(cfg.Hub, cfg.Service)
	}

	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	// Health check e métricas (públicos)
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)
	r.GET("/metrics", healthHandler.GetMetrics)
	r.GET("/metrics/summary", healthHandler.GetMetricsSummary)

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(websocket.QueryTokenMiddleware())
	api.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: cfg.TokenAPI,
	}))
	api.Use(middleware.AuditMiddleware())
	{
		api.POST("/calculate", sizingHandler.Calculate)
		api.POST("/sessions", sizingHandler.CreateSession)

		sessions := api.Group("/sessions/:id")
		sessions.Use(middleware.SessionContext())
		{
			sessions.GET("", sizingHandler.GetSession)
			sessions.DELETE("", sizingHandler.DeleteSession)
			sessions.PATCH("/inputs", sizingHandler.UpdateInputs)

			sessions.PATCH("/tasks/:taskId", sizingHandler.UpdateTask)
			sessions.POST("/tasks/rescale", sizingHandler.RescaleTasks)

			sessions.POST("/work-fronts", sizingHandler.AddWorkFront)
			sessions.PATCH("/work-fronts/:frontId", sizingHandler.UpdateWorkFront)
			sessions.POST("/work-fronts/:frontId/cells", sizingHandler.AdjustCells)
			sessions.DELETE("/work-fronts/:frontId", sizingHandler.RemoveWorkFront)

			sessions.POST("/team-roles", sizingHandler.AddRole)
			sessions.PATCH("/team-roles/:roleId", sizingHandler.UpdateRole)
			sessions.DELETE("/team-roles/:roleId", sizingHandler.RemoveRole)

			sessions.GET("/export", sizingHandler.Export)

			if wsHandler != nil {
				sessions.GET("/ws", websocket.RequireUpgrade(), wsHandler.HandleConnection)
			}
		}

		if wsHandler != nil {
			api.GET("/ws/stats", wsHandler.GetConnectionStats)
		}
	}

	return r
}
