package app

import (
	"os"
	"strconv"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

type Config struct {
	Issuer     string // Required: issuer claim for tokens
	AdminToken string // Required for operator endpoints; unset disables them

	KeyFile      string        // Optional: path to Ed25519 PEM key (default: ./signing.pem, generated if absent)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./leadr-auth.db)
	AccessTTL    time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Optional: refresh token lifetime (default: 30 days)
	NonceTTL     time.Duration // Optional: nonce lifetime (default: 60s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Nonce sweep interval (default: 1m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("LEADR_ISSUER", "leadr-auth"),
		AdminToken:           os.Getenv("LEADR_ADMIN_TOKEN"),
		KeyFile:              getEnvOrDefault("LEADR_KEY_FILE", "signing.pem"),
		DatabaseFile:         getEnvOrDefault("LEADR_DATABASE_FILE", "leadr-auth.db"),
		AccessTTL:            getEnvDurationOrDefault("LEADR_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("LEADR_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		NonceTTL:             getEnvDurationOrDefault("LEADR_NONCE_TTL", service.DefaultNonceTTL),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Minute),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Parse as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Fall back to integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
