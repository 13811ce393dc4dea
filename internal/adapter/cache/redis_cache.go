package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// RedisCache is the read-through order-status cache consulted by the
// confirmation UI before the repository is hit.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) SetStatus(ctx context.Context, tranID string, status string) error {
	return r.rdb.Set(ctx, "order:status:"+tranID, status, r.ttl).Err()
}

func (r *RedisCache) GetStatus(ctx context.Context, tranID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, "order:status:"+tranID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.OrderCache = (*RedisCache)(nil)
