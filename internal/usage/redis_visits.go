package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultVisitsKey is the Redis key holding the visit total.
const DefaultVisitsKey = "meteo:visits"

// RedisVisitStore keeps the visit total in a Redis counter so several server
// processes can share it. INCR makes increments atomic across processes.
type RedisVisitStore struct {
	client *redis.Client
	key    string
}

func NewRedisVisitStore(client *redis.Client, key string) *RedisVisitStore {
	if key == "" {
		key = DefaultVisitsKey
	}
	return &RedisVisitStore{client: client, key: key}
}

// Ping checks that the server is reachable.
func (s *RedisVisitStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisVisitStore) Increment(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", s.key, err)
	}
	return n, nil
}

// Get returns 0 when the key does not exist.
func (s *RedisVisitStore) Get(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, s.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return n, nil
}

func (s *RedisVisitStore) Reset(ctx context.Context) error {
	if err := s.client.Set(ctx, s.key, 0, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisVisitStore) Close() error {
	return s.client.Close()
}
