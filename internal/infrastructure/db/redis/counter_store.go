package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterKeyPrefix = "ratelimit:"

// CounterStore implements the rate-limit counter seam on Redis so multiple
// portal instances share one budget per key. INCR carries the atomicity; the
// NX expiry makes only the first increment of a window start the clock.
type CounterStore struct {
	client *redis.Client
}

func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := counterKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr: %w", err)
	}

	return incr.Val(), time.Now().Add(ttl.Val()), nil
}

func (s *CounterStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, counterKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit delete: %w", err)
	}
	return nil
}
