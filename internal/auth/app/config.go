package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecretKey string // Required: shared secret for HS256 token signing
	JWTAlgorithm string // Optional: HMAC algorithm (HS256, HS384, HS512) (default: HS256)
	Issuer       string // Optional: issuer claim for tokens (default: slavbor-auth)

	// TwoFactorExempt lists account emails allowed to skip 2FA entirely
	// (the bootstrap administrator). Comma-separated.
	TwoFactorExempt []string

	RefreshThreshold time.Duration // Remaining access-token lifetime below which the middleware reissues (default: 5m)

	DatabaseFile  string // Path to the SQLite database file (default: ./auth.db)
	RedisAddr     string // Redis host:port for the token blacklist (default: localhost:6379)
	RedisPassword string // Optional
	RedisDB       int    // Optional: Redis logical database (default: 0)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		JWTSecretKey:        os.Getenv("JWT_SECRET_KEY"),
		JWTAlgorithm:        getEnvOrDefault("JWT_ALGORITHM", "HS256"),
		Issuer:              getEnvOrDefault("JWT_ISSUER", "slavbor-auth"),
		TwoFactorExempt:     splitList(os.Getenv("TWO_FACTOR_EXEMPT")),
		RefreshThreshold:    getEnvDurationOrDefault("REFRESH_THRESHOLD", 5*time.Minute),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "auth.db"),
		RedisAddr:           getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvIntOrDefault("REDIS_DB", 0),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
