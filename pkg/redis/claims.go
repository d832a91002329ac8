package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ClaimStore guards an idempotency key while the request that owns it is in flight.
type ClaimStore interface {
	// Claim reports false when another holder already owns key.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ClaimKey builds the namespaced key "claim:{scope}:{key}".
func ClaimKey(scope, key string) string {
	return fmt.Sprintf("claim:%s:%s", scope, key)
}

type RedisClaims struct {
	client redis.Cmdable
}

func NewRedisClaims(client redis.Cmdable) *RedisClaims {
	return &RedisClaims{client: client}
}

func (c *RedisClaims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, "in-flight", ttl).Result()
	if err != nil {
		logger.Error("Failed to claim idempotency key", err, map[string]interface{}{
			"key": key,
		})
		return false, fmt.Errorf("redis setnx %q: %w", key, err)
	}
	return ok, nil
}

func (c *RedisClaims) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// MemoryClaims is a single-instance ClaimStore used when Redis is not configured.
type MemoryClaims struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryClaims() *MemoryClaims {
	return &MemoryClaims{entries: make(map[string]time.Time), now: time.Now}
}

func (c *MemoryClaims) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if expiresAt, ok := c.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	c.entries[key] = now.Add(ttl)
	return true, nil
}

func (c *MemoryClaims) Release(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
