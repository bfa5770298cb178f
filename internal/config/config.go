// Package config provides environment configuration for the service.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

// ErrMissingCredentials is returned when the platform credentials are
// not configured. It is fatal: no fetch can be attempted without them.
var ErrMissingCredentials = errors.New("missing platform credentials: BOT_ID, CLIENT_ID and CLIENT_SECRET must be set")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Bot platform settings
	PlatformHost string
	BotID        string
	ClientID     string
	ClientSecret string

	// Report settings
	MaxRangeDays int

	// Result cache
	CacheTTL  time.Duration
	RedisAddr string

	// Dashboard API auth
	APIJWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Bot platform
		PlatformHost: getEnv("PLATFORM_HOST", "https://de-platform.kore.ai"),
		BotID:        getEnv("BOT_ID", ""),
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),

		// Reports
		MaxRangeDays: getIntEnv("MAX_RANGE_DAYS", 7),

		// Result cache
		CacheTTL:  getDurationEnv("CACHE_TTL", 5*time.Minute),
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// Dashboard API auth
		APIJWTSecret: getEnv("API_JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Validate fails fast when required settings are absent.
func (c *Config) Validate() error {
	if c.BotID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Credential returns the platform credential pair.
func (c *Config) Credential() model.Credential {
	return model.Credential{AppID: c.ClientID, Secret: c.ClientSecret}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
