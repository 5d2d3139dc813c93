package config

import (
	"os"
	"strings"
	"time"
)

const (
	defaultDatabaseURL = "carmarket.db"
	defaultListenAddr  = ":8080"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
)

type Config struct {
	AppEnv      string
	DatabaseURL string
	ListenAddr  string
	JWTSecret   string
	JWTTTL      time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      strings.ToLower(envOr("APP_ENV", "dev")),
		DatabaseURL: envOr("DATABASE_URL", defaultDatabaseURL),
		ListenAddr:  envOr("LISTEN_ADDR", defaultListenAddr),
		JWTSecret:   envOr("JWT_SECRET", defaultJWTSecret),
	}

	ttl, err := time.ParseDuration(envOr("JWT_TTL", defaultJWTTTL))
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL = ttl

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
