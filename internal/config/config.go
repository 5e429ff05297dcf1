// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the catalog service.
type Config struct {
	Port           string
	GRPCPort       string // empty disables the gRPC listener
	DatabaseURL    string
	RedisURL       string // empty disables event publishing
	DBMaxConns     int32  // 0 keeps the pgx default
	SecretKey      string
	TokenTTL       time.Duration
	HealthInterval time.Duration
}

// Load reads environment variables (and a .env file when present) and
// returns a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	interval, err := duration("HEALTH_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	ttl, err := duration("TOKEN_TTL", 0)
	if err != nil {
		return nil, err
	}

	var maxConns int32
	if s := os.Getenv("DB_MAX_CONNS"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("DB_MAX_CONNS must be a positive integer, got %q", s)
		}
		maxConns = int32(n)
	}

	return &Config{
		Port:           port,
		GRPCPort:       os.Getenv("GRPC_PORT"),
		DatabaseURL:    dbURL,
		RedisURL:       os.Getenv("REDIS_URL"),
		DBMaxConns:     maxConns,
		SecretKey:      secret,
		TokenTTL:       ttl,
		HealthInterval: interval,
	}, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, s)
	}
	return d, nil
}
