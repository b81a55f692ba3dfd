// Package config loads simulator configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all simulator configuration.
type Config struct {
	Server    ServerConfig
	Portfolio PortfolioConfig
	Prices    PricesConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// PortfolioConfig holds ledger configuration.
type PortfolioConfig struct {
	UserID          string
	StartingBalance string
	LedgerFile      string
}

// PricesConfig holds price feed configuration.
type PricesConfig struct {
	CoinIDs         []string
	RefreshInterval time.Duration
	CacheTTL        time.Duration
	BookFile        string
}

// RateLimitConfig holds per-client API throttling configuration.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from an optional .env file and the
// environment. Missing values fall back to usable defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional, variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("CFS_LISTEN_ADDR", ":8080"),
			AllowedOrigins: getEnvAsList("CFS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Portfolio: PortfolioConfig{
			UserID:          getEnv("CFS_USER", "player1"),
			StartingBalance: getEnv("CFS_STARTING_BALANCE", "1000"),
			LedgerFile:      getEnv("CFS_LEDGER_FILE", "ledger.jsonl"),
		},
		Prices: PricesConfig{
			CoinIDs:         getEnvAsList("CFS_COINS", "bitcoin,ethereum,dogecoin,pepe"),
			RefreshInterval: getEnvAsDuration("CFS_PRICE_REFRESH", 30*time.Second),
			CacheTTL:        getEnvAsDuration("CFS_PRICE_CACHE_TTL", time.Minute),
			BookFile:        getEnv("CFS_PRICES_FILE", "prices.json"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("CFS_RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("CFS_RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level: getEnv("CFS_LOG_LEVEL", "info"),
		},
	}
	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated environment variable.
func getEnvAsList(key, defaultValue string) []string {
	parts := strings.Split(getEnv(key, defaultValue), ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
