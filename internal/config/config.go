package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the search service. Values come
// from the environment, optionally seeded from a .env file.
type Config struct {
	Port            int
	UpstreamURL     string
	DBPath          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RefreshInterval time.Duration
	LogLevel        string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		UpstreamURL:     getEnvOrDefault("UPSTREAM_URL", "http://localhost:3000"),
		DBPath:          getEnvOrDefault("DB_PATH", "data/market-search.db"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("UPSTREAM_URL must not be empty")
	}
	if cfg.RefreshInterval < time.Second {
		return nil, fmt.Errorf("REFRESH_INTERVAL too small: %s", cfg.RefreshInterval)
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
