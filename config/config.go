package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Redis configuration (optional; empty disables the balance cache)
	RedisAddr       string
	BalanceCacheTTL time.Duration

	// HTTP configuration
	HTTPPort    int
	MetricsPort int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		// Defaults
		BalanceCacheTTL: 5 * time.Minute,
		HTTPPort:        8080,
		MetricsPort:     9090,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if port := os.Getenv("HTTP_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.HTTPPort = parsed
		}
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.MetricsPort = parsed
		}
	}
	if ttl := os.Getenv("BALANCE_CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			config.BalanceCacheTTL = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
