package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "campussync:idem:"

// RedisGuard shares idempotency state across process instances through a
// Redis key with a server-side TTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard wraps an existing client. The caller owns the client's
// lifecycle.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// IsDuplicate reports whether the key is still live in Redis.
func (g *RedisGuard) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed sets the key with the configured TTL, refreshing it if it
// already exists.
func (g *RedisGuard) MarkProcessed(ctx context.Context, key string) error {
	if err := g.client.Set(ctx, redisKeyPrefix+key, 1, g.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark idempotency key: %w", err)
	}
	return nil
}

var _ Guard = (*RedisGuard)(nil)
