package config

import (
	"errors"
	"os"
	"time"
)

const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// RateLimit is a fixed-window budget for one endpoint path.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

type Config struct {
	ServerPort   string
	KVBackend    string
	DatabaseURL  string
	RedisURL     string
	JWTSecret    string
	JWTExpiry    time.Duration
	PasswordSalt string

	RateLimits       map[string]RateLimit
	DefaultRateLimit RateLimit
}

func LoadConfig() (*Config, error) {
	expiryStr := getEnv("JWT_EXPIRY", "168h")
	expiry, err := time.ParseDuration(expiryStr)
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		KVBackend:    getEnv("KV_BACKEND", BackendRedis),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiry:    expiry,
		PasswordSalt: os.Getenv("PASSWORD_SALT"),

		RateLimits:       DefaultRateLimits(),
		DefaultRateLimit: RateLimit{Requests: 100, Window: time.Minute},
	}

	// Validate required fields
	switch cfg.KVBackend {
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
	default:
		return nil, errors.New("KV_BACKEND must be redis or postgres")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.PasswordSalt == "" {
		return nil, errors.New("PASSWORD_SALT is required")
	}

	return cfg, nil
}

// DefaultRateLimits declares the per-endpoint fixed-window budgets.
// Endpoints not listed here fall back to DefaultRateLimit.
func DefaultRateLimits() map[string]RateLimit {
	return map[string]RateLimit{
		"/api/onboard/start":     {Requests: 5, Window: 5 * time.Minute},
		"/api/onboard/step":      {Requests: 30, Window: time.Minute},
		"/api/sign":              {Requests: 3, Window: 10 * time.Minute},
		"/api/feedback":          {Requests: 5, Window: 5 * time.Minute},
		"/api/feedback/reminder": {Requests: 5, Window: 5 * time.Minute},
		"/api/auth/signin":       {Requests: 10, Window: 5 * time.Minute},
	}
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
