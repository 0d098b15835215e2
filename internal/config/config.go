// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present; real environment
// variables win over .env values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "data/palengke.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  24 * time.Hour,
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = d
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
