package config

import (
	"errors"
	"testing"
	"time"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"TOKEN_API": "segredo"}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.GinMode != "debug" || cfg.LogLevel != "info" {
		t.Errorf("defaults = %q %q %q", cfg.Port, cfg.GinMode, cfg.LogLevel)
	}
	if cfg.LogJSON {
		t.Error("LogJSON should default to false")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMinute != 600 {
		t.Errorf("RateLimitPerMinute = %d, want 600", cfg.RateLimitPerMinute)
	}
}

func TestFromEnvMissingToken(t *testing.T) {
	_, err := FromEnv(env(nil))
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("FromEnv() error = %v, want ErrMissingToken", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"TOKEN_API":              "segredo",
		"PORT":                   "9090",
		"LOG_LEVEL":              "DEBUG",
		"LOG_JSON":               "true",
		"SESSION_TTL":            "30m",
		"RATE_LIMIT_PER_MINUTE":  "-5",
		"SYNC_TECHNICAL_ROLE_ID": "tr9",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "9090" || cfg.LogLevel != "debug" || !cfg.LogJSON {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Errorf("RateLimitPerMinute = %d, want 0", cfg.RateLimitPerMinute)
	}
	if cfg.SyncTechnicalRole != "tr9" {
		t.Errorf("SyncTechnicalRole = %q", cfg.SyncTechnicalRole)
	}
}

func TestFromEnvInvalidValues(t *testing.T) {
	cases := map[string]string{
		"LOG_JSON":              "talvez",
		"SESSION_TTL":           "duas horas",
		"RATE_LIMIT_PER_MINUTE": "muito",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(env(map[string]string{"TOKEN_API": "x", key: value}))
			if err == nil {
				t.Errorf("expected error for %s=%q", key, value)
			}
		})
	}
}
