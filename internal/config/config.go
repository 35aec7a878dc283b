package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
// The service is stateless: no database, no secrets beyond the Sentry DSN.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the upstream gateway
	AuthMode string

	// Generation limits
	MaxCompases            int     // upper bound on bars per request
	MaxVariations          int     // upper bound on patterns per request
	DefaultDarknessCeiling float64 // ceiling applied when the request and preset give none
}

func Load() *Config {
	return &Config{
		Environment:            getEnv("ENVIRONMENT", "development"),
		Port:                   getEnv("PORT", "8080"),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
		AuthMode:               getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		MaxCompases:            getEnvInt("MAX_COMPASES", 64),
		MaxVariations:          getEnvInt("MAX_VARIATIONS", 8),
		DefaultDarknessCeiling: getEnvFloat("DEFAULT_DARKNESS_CEILING", 6.5),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default on missing, malformed or non-positive values.
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// IsGatewayMode returns true if running behind the gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether production-only integrations should run.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
