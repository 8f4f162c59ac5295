// Package cache provides a Redis-backed sdk.ResponseCache.
//
//	rc, err := cache.NewRedisCache(cache.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
//	client, err := sdk.NewClient(config.WithCache(rc, time.Minute))
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// ErrCacheClosed is returned by operations on a closed cache.
var ErrCacheClosed = errors.New("cache is closed")

// entry is how a response is stored.
type entry struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body"`
}

// RedisCache implements sdk.ResponseCache using Redis.
type RedisCache struct {
	client *redis.Client
	config *Config
}

var _ sdk.ResponseCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(config *Config) (*RedisCache, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	client := redis.NewClient(&redis.Options{
		Addr:            config.Address(),
		Password:        config.Password,
		DB:              config.DB,
		MaxRetries:      config.MaxRetries,
		MinRetryBackoff: config.MinRetryBackoff,
		MaxRetryBackoff: config.MaxRetryBackoff,
		DialTimeout:     config.DialTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
		PoolSize:        config.PoolSize,
		MinIdleConns:    config.MinIdleConns,
		ConnMaxIdleTime: config.MaxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, config: config}, nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client, config *Config) *RedisCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisCache{client: client, config: config}
}

func (r *RedisCache) key(k string) string {
	return r.config.KeyPrefix + k
}

// Get implements sdk.ResponseCache.
func (r *RedisCache) Get(ctx context.Context, key string) (*sdk.HTTPResponse, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var e entry
	if err := codec.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return &sdk.HTTPResponse{StatusCode: e.StatusCode, Header: e.Header, Body: e.Body}, true, nil
}

// Set implements sdk.ResponseCache. A zero ttl uses Config.DefaultTTL.
func (r *RedisCache) Set(ctx context.Context, key string, resp *sdk.HTTPResponse, ttl time.Duration) error {
	if resp == nil {
		return nil
	}
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}

	raw, err := codec.Marshal(entry{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes one entry. Deleting a missing key is not an error.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every entry whose key starts with prefix, for example
// the CacheKey of a resource path after updating it. It returns the number
// of removed entries.
func (r *RedisCache) Invalidate(ctx context.Context, prefix string) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, r.key(prefix)+"*", 100).Iterator()

	pipe := r.client.Pipeline()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", prefix, err)
	}

	cmds, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to invalidate %s: %w", prefix, err)
	}
	for _, cmd := range cmds {
		if ic, ok := cmd.(*redis.IntCmd); ok {
			removed += ic.Val()
		}
	}
	return removed, nil
}

// TTL returns the remaining time to live of an entry, zero if it has none.
func (r *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Ping checks if the cache is healthy
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrCacheClosed
		}
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Stats returns Redis connection pool stats
func (r *RedisCache) Stats() *redis.PoolStats {
	return r.client.PoolStats()
}

// Close closes the cache connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
