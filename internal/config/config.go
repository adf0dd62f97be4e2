// Package config reads process configuration from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	ServerPort string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel string
	LogDev   bool

	// RedisAddress enables the worker's distributed lock when set.
	RedisAddress string

	IdempotencyTTL    time.Duration
	ReconcileInterval time.Duration
	ReconcileFix      bool
	ShutdownTimeout   time.Duration
}

// Load reads the configuration. Missing optional keys fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxConns:        int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogDev:            getEnvBool("LOG_DEV", false),
		RedisAddress:      getEnv("REDIS_ADDRESS", ""),
		IdempotencyTTL:    getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", time.Hour),
		ReconcileFix:      getEnvBool("RECONCILE_FIX", false),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// RequireServer checks the keys the API server cannot start without.
func (c Config) RequireServer() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("required environment variable JWT_SECRET not set")
	}
	return nil
}

// RequireDatabase checks the keys every database tool needs.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
