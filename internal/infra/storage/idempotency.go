package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore claims request keys with SET NX so a retried command is executed once.
type RedisIdempotencyStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisIdempotencyStore(c *redis.Client, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: c, prefix: prefix}
}

// Claim reports false when key was already claimed and has not expired.
func (r *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, "processing", ttl).Result()
}

// Release frees key so the command can be retried.
func (r *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
