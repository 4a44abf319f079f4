// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/finlens/statement-engine/internal/engine"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Parse  ParseConfig
}

type ServerConfig struct {
	Addr         string
	BodyLimitMB  int
	DebugLogging bool
}

type ParseConfig struct {
	// YearPrefix disambiguates two-digit years on statements.
	YearPrefix int
	// Trace enables per-line state machine tracing.
	Trace bool
}

// Load reads configuration from environment variables, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         envString("SERVER_ADDR", ":8080"),
			BodyLimitMB:  envInt("SERVER_BODY_LIMIT_MB", 32),
			DebugLogging: envBool("SERVER_DEBUG_LOGGING", false),
		},
		Parse: ParseConfig{
			YearPrefix: envInt("PARSE_YEAR_PREFIX", engine.DefaultYearPrefix),
			Trace:      envBool("PARSE_TRACE", false),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
