package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the Redis connection settings of a response cache.
type Config struct {
	// Redis connection settings
	Host     string
	Port     int
	Password string
	DB       int

	// Connection pool settings
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	MaxIdleTime     time.Duration

	// KeyPrefix is prepended to every key
	KeyPrefix string

	// DefaultTTL applies when Set is called with a zero TTL
	DefaultTTL time.Duration
}

// DefaultConfig returns a configuration for a local Redis.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            6379,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxIdleTime:     5 * time.Minute,
		DefaultTTL:      5 * time.Minute,
	}
}

// NewConfigFromEnv creates a Config from REDIS_* and CACHE_* environment
// variables, falling back to DefaultConfig.
func NewConfigFromEnv() (*Config, error) {
	c := DefaultConfig()

	port, err := strconv.Atoi(getEnvOrDefault("REDIS_PORT", strconv.Itoa(c.Port)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	db, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	poolSize, err := strconv.Atoi(getEnvOrDefault("REDIS_POOL_SIZE", strconv.Itoa(c.PoolSize)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_POOL_SIZE: %w", err)
	}

	defaultTTL, err := parseDuration(getEnvOrDefault("CACHE_DEFAULT_TTL", c.DefaultTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_DEFAULT_TTL: %w", err)
	}

	c.Host = getEnvOrDefault("REDIS_HOST", c.Host)
	c.Port = port
	c.Password = os.Getenv("REDIS_PASSWORD")
	c.DB = db
	c.PoolSize = poolSize
	c.DefaultTTL = defaultTTL
	c.KeyPrefix = os.Getenv("CACHE_KEY_PREFIX")
	return c, nil
}

// Address returns the Redis server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration accepts a Go duration ("1h30m") or a number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}
