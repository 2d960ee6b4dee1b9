package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyAPIKey = "ecocart:settings:gemini_api_key"

// RedisStore keeps the credential in Redis so every server instance sees
// the same key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) APIKey(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, redisKeyAPIKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return value, nil
}

func (s *RedisStore) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Set(ctx, redisKeyAPIKey, key, 0).Err(); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	return nil
}
