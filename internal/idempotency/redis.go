// Package idempotency remembers the outcome of checkout requests per
// Idempotency-Key so that retried submissions never place orders twice.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps locks and remembered responses in Redis.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore creates a RedisStore whose keys expire after ttl.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func lockKey(scope, key string) string { return "idemp:" + scope + ":" + key }
func mapKey(scope, key string) string  { return "idemp:map:" + scope + ":" + key }

// TryLock claims key for scope. It returns false when another request holds
// or has completed the same key.
func (s *RedisStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(scope, key), "1", s.ttl).Result()
}

// Release drops the lock so a failed request can be retried with the same key.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, lockKey(scope, key)).Err()
}

// Remember stores the response body produced under key.
func (s *RedisStore) Remember(ctx context.Context, scope, key string, value []byte) error {
	return s.rdb.Set(ctx, mapKey(scope, key), value, s.ttl).Err()
}

// Recall returns the response remembered under key, if any.
func (s *RedisStore) Recall(ctx context.Context, scope, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, mapKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}
