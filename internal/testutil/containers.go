// Package testutil starts the containers used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is a running Redis for tests.
type RedisContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
	URL       string
}

// StartRedis starts a Redis container.
func StartRedis(ctx context.Context) (*RedisContainer, error) {
	container, err := redis.Run(ctx, "redis:7-alpine",
		redis.WithLogLevel(redis.LogLevelVerbose),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get redis host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port("6379/tcp"))
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get redis port: %w", err)
	}

	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("invalid redis port %q: %w", mapped.Port(), err)
	}

	return &RedisContainer{
		Container: container,
		Host:      host,
		Port:      port,
		URL:       fmt.Sprintf("redis://%s:%d", host, port),
	}, nil
}

// Terminate stops the container.
func (rc *RedisContainer) Terminate(ctx context.Context) error {
	if rc.Container == nil {
		return nil
	}
	if err := rc.Container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate redis: %w", err)
	}
	return nil
}
