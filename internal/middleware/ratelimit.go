package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/cache"
	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdle é o tempo sem requisições até o limitador de um IP ser descartado
const limiterIdle = 10 * time.Minute

// RateLimiter limita requisições por IP de origem
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *cache.Cache[*rate.Limiter]
}

// NewRateLimiter cria um limitador com perMinute requisições por minuto por IP.
// perMinute <= 0 desativa o limite.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limiters: cache.New[*rate.Limiter](limiterIdle, cache.WithCleanupInterval[*rate.Limiter](limiterIdle)),
	}
	if perMinute <= 0 {
		rl.limit = rate.Inf
		return rl
	}
	rl.limit = rate.Limit(float64(perMinute) / 60)
	rl.burst = perMinute / 10
	if rl.burst < 1 {
		rl.burst = 1
	}
	return rl
}

// limiter busca ou cria o limitador do IP
func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters.Touch(ip); ok {
		return l
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Set(ip, l)
	return l
}

// Allow informa se o IP ainda tem cota
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.limit == rate.Inf {
		return true
	}
	return rl.limiter(ip).Allow()
}

// Middleware retorna o handler gin do limitador
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			metrics.Get().IncrementRateLimited()
			logger.FromGin(c).Warn().
				Str("client_ip", ip).
				Msg("Rate limit excedido")

			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "limite de requisições excedido",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.limit <= 0 || rl.limit == rate.Inf {
		return 1
	}
	s := int(1 / float64(rl.limit))
	if s < 1 {
		s = 1
	}
	return s
}

// Stop encerra a limpeza periódica dos limitadores
func (rl *RateLimiter) Stop() {
	rl.limiters.Stop()
}
