package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this client writes to Redis
const KeyPrefix = "vent_client:"

// RedisBackend keeps records in Redis with native key expiry. It lets several
// terminals on one machine (or a shared dev box) see the same session.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, KeyPrefix+key, value, ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, KeyPrefix+key).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

// NewRedis returns a Store backed by Redis.
func NewRedis(client *redis.Client, sessionID string, opts ...Option) *Store {
	return New(NewRedisBackend(client), sessionID, opts...)
}
