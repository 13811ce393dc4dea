package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// RedisIdempotencyStore backs two guards: the per-user checkout
// in-flight lock and the settled-notification dedupe map. Locks get a
// short TTL so a crash between TryLock and Unlock cannot wedge a user
// for long; dedupe entries live for the redelivery window.
type RedisIdempotencyStore struct {
	rdb       *redis.Client
	lockTTL   time.Duration
	dedupeTTL time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, lockTTL, dedupeTTL time.Duration) *RedisIdempotencyStore {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &RedisIdempotencyStore{rdb: rdb, lockTTL: lockTTL, dedupeTTL: dedupeTTL}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "lock:"+scope+":"+key, "1", s.lockTTL).Result()
}

func (s *RedisIdempotencyStore) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, "lock:"+scope+":"+key).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "seen:"+scope+":"+key, value, s.dedupeTTL).Err()
}

// Recall reports a hit only on a successful read. A store error is
// returned as a miss plus the error, never as a hit: callers short-
// circuit on hits, and an outage must not be mistaken for one.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "seen:"+scope+":"+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.IdempotencyStore = (*RedisIdempotencyStore)(nil)
