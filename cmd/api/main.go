package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/config"
	"github.com/cleberrangel/dimensionamento-api/internal/handler"
	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/metrics"
	"github.com/cleberrangel/dimensionamento-api/internal/middleware"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/cleberrangel/dimensionamento-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Dur("session_ttl", cfg.SessionTTL).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Msg("Dimensionamento API iniciando")

	metrics.Init()

	p, err := preset.Load(cfg.PresetPath)
	if err != nil {
		log.Fatal().Err(err).Str("preset", cfg.PresetPath).Msg("Erro ao carregar preset")
	}
	p.WithSyncOverrides(cfg.SyncTechnicalRole, cfg.SyncCivilRole)
	log.Info().
		Str("technical_role", p.Sync.TechnicalRoleID).
		Str("civil_role", p.Sync.CivilRoleID).
		Int("tasks", len(p.Tasks)).
		Int("work_fronts", len(p.WorkFronts)).
		Msg("Preset carregado")

	// Inicializa dependências
	hub := websocket.NewHub()
	go hub.Run()

	sizingService := service.NewSizingService(p, cfg.SessionTTL, hub)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.RouterConfig{
		Service:     sizingService,
		Hub:         hub,
		TokenAPI:    cfg.TokenAPI,
		RateLimiter: rateLimiter,
		Version:     Version,
	})

	if cfg.GinMode != gin.ReleaseMode {
		// Debug memory endpoint (público)
		r.GET("/debug/memory", func(c *gin.Context) {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			c.JSON(http.StatusOK, gin.H{
				"alloc_mb":       m.Alloc / 1024 / 1024,
				"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
				"sys_mb":         m.Sys / 1024 / 1024,
				"heap_alloc_mb":  m.HeapAlloc / 1024 / 1024,
				"heap_inuse_mb":  m.HeapInuse / 1024 / 1024,
				"heap_objects":   m.HeapObjects,
				"goroutines":     runtime.NumGoroutine(),
				"gc_runs":        m.NumGC,
				"gc_pause_total": m.PauseTotalNs / 1000000, // ms
				"sessions":       sizingService.ActiveSessions(),
			})
		})

		// Force GC endpoint (público)
		r.POST("/debug/gc", func(c *gin.Context) {
			runtime.GC()
			debug.FreeOSMemory()
			c.JSON(http.StatusOK, gin.H{"status": "gc_completed"})
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Inicia servidor
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Encerrando servidor")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Erro no encerramento do servidor")
	}

	hub.Stop()
	sizingService.Close()
	rateLimiter.Stop()

	log.Info().Msg("Servidor encerrado")
}
