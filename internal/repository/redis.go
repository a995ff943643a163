package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const suppressedKeyPrefix = "todo:push:suppressed:"

// RedisRepository remembers push tokens the provider reported as dead so the
// consumer stops sending to them.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// IsTokenSuppressed reports whether token is currently marked as invalid.
func (r *RedisRepository) IsTokenSuppressed(ctx context.Context, token string) (bool, error) {
	exists, err := r.client.Exists(ctx, suppressedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// SuppressToken marks token as invalid for ttl, or the repository default
// when ttl is not positive.
func (r *RedisRepository) SuppressToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.SetEX(ctx, suppressedKeyPrefix+token, "1", ttl).Err()
}
