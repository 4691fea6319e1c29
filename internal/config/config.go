package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	TokenAPI           string
	Port               string
	GinMode            string
	LogLevel           string
	LogJSON            bool
	PresetPath         string
	SessionTTL         time.Duration
	RateLimitPerMinute int
	SyncTechnicalRole  string
	SyncCivilRole      string
}

// ErrMissingToken indica que um token obrigatório não foi configurado
var ErrMissingToken = errors.New("token obrigatório não configurado")

const (
	defaultPort      = "8080"
	defaultGinMode   = "debug"
	defaultLogLevel  = "info"
	defaultTTL       = 2 * time.Hour
	defaultRateLimit = 600
)

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()          // ./.env
	_ = godotenv.Load("../.env") // ../.env ao rodar de cmd/

	return FromEnv(os.Getenv)
}

// FromEnv monta a configuração a partir de uma função de lookup
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TokenAPI:          getenv("TOKEN_API"),
		Port:              getenv("PORT"),
		GinMode:           getenv("GIN_MODE"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL")),
		PresetPath:        getenv("PRESET_PATH"),
		SyncTechnicalRole: getenv("SYNC_TECHNICAL_ROLE_ID"),
		SyncCivilRole:     getenv("SYNC_CIVIL_ROLE_ID"),
	}

	// Validações obrigatórias
	if cfg.TokenAPI == "" {
		return nil, fmt.Errorf("TOKEN_API: %w", ErrMissingToken)
	}

	if v := getenv("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LOG_JSON inválido: %w", err)
		}
		cfg.LogJSON = b
	}

	cfg.SessionTTL = defaultTTL
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL inválido: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SESSION_TTL deve ser positivo: %s", v)
		}
		cfg.SessionTTL = d
	}

	cfg.RateLimitPerMinute = defaultRateLimit
	if v := getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE inválido: %w", err)
		}
		// 0 desativa o limitador
		if n < 0 {
			n = 0
		}
		cfg.RateLimitPerMinute = n
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.GinMode == "" {
		cfg.GinMode = defaultGinMode
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	return cfg, nil
}
