package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/metrics"
	"github.com/cleberrangel/dimensionamento-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// SessionCounter informa quantas sessões de edição estão em memória
type SessionCounter interface {
	ActiveSessions() int
}

// Limites usados nas verificações de saúde
const (
	maxHeapMB         = 512
	maxActiveSessions = 1000
	maxWSConnections  = 200
)

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	sessions  SessionCounter
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. wsHub may be nil.
func NewHealthHandler(sessions SessionCounter, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		sessions:  sessions,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Description Returns basic liveness status for Kubernetes probes
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status
// @Summary Readiness check
// @Description Returns readiness status based on memory and session load
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"memory":   metrics.CheckMemoryHealth(maxHeapMB),
		"sessions": metrics.CheckSessionHealth(h.sessions.ActiveSessions(), maxActiveSessions),
	}
	h.respond(c, components)
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Description Returns comprehensive health information including all components
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"memory":   metrics.CheckMemoryHealth(maxHeapMB),
		"sessions": metrics.CheckSessionHealth(h.sessions.ActiveSessions(), maxActiveSessions),
	}

	// Check WebSocket hub if available
	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}

	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}

	return metrics.HealthStatus{
		Status: "healthy",
	}
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Description Returns all application metrics including request counts, sessions and exports
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot(h.sessions.ActiveSessions())
	c.JSON(http.StatusOK, snapshot)
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Description Returns a summary of key application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot(h.sessions.ActiveSessions())

	// Calculate success rates
	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	summary := gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
			"rate_limited": snapshot.Requests.RateLimited,
		},
		"sessions": gin.H{
			"active":  snapshot.Sessions.Active,
			"created": snapshot.Sessions.Created,
			"expired": snapshot.Sessions.Expired,
		},
		"engine": gin.H{
			"recomputes":             snapshot.Engine.Recomputes,
			"stateless_calculations": snapshot.Engine.StatelessCalcs,
		},
		"exports": gin.H{
			"generated": snapshot.Exports.Generated,
			"errors":    snapshot.Exports.Errors,
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	}

	c.JSON(http.StatusOK, summary)
}
