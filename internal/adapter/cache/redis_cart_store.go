package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jayedsikder/commerceflow-api/internal/cart"
)

// RedisCartStore keeps one JSON snapshot per cart id so carts survive
// across sessions. TTL refreshes on every write.
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCartStore) Load(ctx context.Context, cartID string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, "cart:"+cartID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *RedisCartStore) Save(ctx context.Context, cartID string, snapshot []byte) error {
	return s.rdb.Set(ctx, "cart:"+cartID, snapshot, s.ttl).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, cartID string) error {
	return s.rdb.Del(ctx, "cart:"+cartID).Err()
}

var _ cart.SnapshotStore = (*RedisCartStore)(nil)
