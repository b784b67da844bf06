package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Built once in main from the
// environment so the rest of the code never reads env vars directly.
type Server struct {
	Addr string

	// DatabaseURL selects the Postgres-backed signature store. When empty the
	// service falls back to the in-memory store (development only).
	DatabaseURL string

	Redis RedisConfig

	Verification VerificationConfig

	// StatsCacheTTL bounds staleness of the cached GET /signatories payload.
	StatsCacheTTL time.Duration
}

// RedisConfig configures the optional Redis client used for response caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// VerificationConfig configures the challenge-response human-verification
// collaborator.
type VerificationConfig struct {
	SecretKey string
	// VerifyURL overrides the default siteverify endpoint, mainly for tests.
	VerifyURL string
	Timeout   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() Server {
	addr := os.Getenv("PETITION_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Verification: VerificationConfig{
			SecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
			VerifyURL: os.Getenv("TURNSTILE_VERIFY_URL"),
			Timeout:   envDuration("TURNSTILE_TIMEOUT", 10*time.Second),
		},
		StatsCacheTTL: envDuration("STATS_CACHE_TTL", 30*time.Second),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
