// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// PendingTTL is the fixed lifetime of a pending registration, measured from
// creation. Verification re-checks it at read time; store-level expiry is
// best-effort hygiene on top.
const PendingTTL = 10 * time.Minute

// Config captures everything the server process needs.
type Config struct {
	Addr string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration

	// PostgresDSN selects the postgres identity store when set; empty means
	// the in-memory store (dev, tests).
	PostgresDSN string

	// RedisURL selects the redis pending-registration store when set; empty
	// means the in-memory store plus the background reaper.
	RedisURL          string
	RedisPoolSize     int
	RedisMinIdleConns int

	ReaperInterval time.Duration
}

// FromEnv reads configuration from environment variables, with defaults
// suitable for local development.
func FromEnv() Config {
	cfg := Config{
		Addr:              getenv("EVENTLIFT_ADDR", ":8080"),
		JWTSigningKey:     getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         getenv("JWT_ISSUER", "eventlift"),
		JWTAudience:       getenv("JWT_AUDIENCE", "eventlift-api"),
		TokenTTL:          getduration("TOKEN_TTL", 24*time.Hour),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPoolSize:     getint("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: getint("REDIS_MIN_IDLE_CONNS", 2),
		ReaperInterval:    getduration("PENDING_REAPER_INTERVAL", time.Minute),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
