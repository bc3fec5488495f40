package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores entries as plain redis strings under prefix. A zero
// ttl keeps entries until they are deleted.
type RedisBackend struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisBackend(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.rdb.Del(ctx, full...).Err()
}
