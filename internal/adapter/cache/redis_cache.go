// internal/adapter/cache/redis_cache.go

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "locallens:upstream:"

// ResponseCache keeps raw upstream response bodies in Redis for a fixed TTL
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a cache on an existing client
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		client: client,
		ttl:    ttl,
	}
}

// NewResponseCacheWithURL creates a cache from a redis:// URL
func NewResponseCacheWithURL(url string, ttl time.Duration) (*ResponseCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return NewResponseCache(redis.NewClient(opts), ttl), nil
}

// Ping checks connectivity
func (c *ResponseCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *ResponseCache) Close() error {
	return c.client.Close()
}

// Get returns the cached body for key. A miss is not an error.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, hashKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return body, true, nil
}

// Set stores body under key for the cache TTL
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) error {
	if err := c.client.Set(ctx, hashKey(key), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// hashKey keeps request URLs, which may carry credentials, out of Redis
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:])
}
