// Package mockplatform is an in-memory stand-in for the commerce platform
// HTTP API. It serves enough of the query, search, update and custom
// object surface for the SDK examples and end-to-end tests to run
// without a real project.
package mockplatform

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the fake platform configuration
type Config struct {
	Host string
	Port int

	// ClientID and ClientSecret enable the token endpoint and bearer
	// checks. Empty credentials leave the API open.
	ClientID     string
	ClientSecret string
	TokenTTL     time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Seed loads a small demo catalog into every new project.
	Seed bool

	// Latency is added to every API request.
	Latency time.Duration

	MetricsPath string
	// AccessLog writes one line per request to stdout.
	AccessLog bool
}

// DefaultConfig returns an open, unseeded configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            8080,
		TokenTTL:        48 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	if cfg.TokenTTL, err = time.ParseDuration(getEnvOrDefault("TOKEN_TTL", "48h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getEnvOrDefault("REQUEST_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnvOrDefault("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.Latency, err = time.ParseDuration(getEnvOrDefault("LATENCY", "0s")); err != nil {
		return nil, fmt.Errorf("invalid LATENCY: %w", err)
	}
	if cfg.Seed, err = strconv.ParseBool(getEnvOrDefault("SEED", "true")); err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	if cfg.AccessLog, err = strconv.ParseBool(getEnvOrDefault("ACCESS_LOG", "false")); err != nil {
		return nil, fmt.Errorf("invalid ACCESS_LOG: %w", err)
	}

	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.ClientID = os.Getenv("CLIENT_ID")
	cfg.ClientSecret = os.Getenv("CLIENT_SECRET")
	cfg.MetricsPath = getEnvOrDefault("METRICS_PATH", cfg.MetricsPath)

	if (cfg.ClientID == "") != (cfg.ClientSecret == "") {
		return nil, fmt.Errorf("CLIENT_ID and CLIENT_SECRET must be set together")
	}
	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
