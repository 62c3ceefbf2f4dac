package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server configuration loaded from environment variables.
// godotenv is loaded by the entrypoints before Load is called.
type Config struct {
	Port        string
	DataDir     string
	LogLevel    string
	LogFile     string
	CORSOrigins []string

	// DigestCron is a cron expression for the daily digest broadcast.
	DigestCron string

	// RateLimit is requests per minute per client IP on mutating routes.
	RateLimit int
}

// Load reads configuration from the environment, applying defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8787"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "tendo.log"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		DigestCron:  getEnv("DIGEST_CRON", "0 9 * * *"),
		RateLimit:   getEnvInt("RATE_LIMIT", 120),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}

	return cfg, nil
}

// getEnv returns the environment variable or a default
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default
func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseDuration parses an env-style duration, falling back to a default
func ParseDuration(s string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultValue
}
