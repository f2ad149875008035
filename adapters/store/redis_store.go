package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainmall/authgate/ports"
)

// RedisStore keeps outstanding challenge nonces in Redis so replay
// protection holds across broker instances
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) ports.NonceStore {
	return &RedisStore{
		client: client,
		prefix: "authgate:nonce:",
	}
}

// Save records a nonce for the challenge's validity window
func (s *RedisStore) Save(ctx context.Context, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+nonce, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to save nonce: %w", err)
	}
	return nil
}

// Consume takes the nonce atomically; GETDEL guarantees at most one
// verification wins even under concurrent submissions
func (s *RedisStore) Consume(ctx context.Context, nonce string) (bool, error) {
	_, err := s.client.GetDel(ctx, s.prefix+nonce).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return true, nil
}
