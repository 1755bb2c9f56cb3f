package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"equityshield/internal/cache/models"
	"equityshield/pkg/platform/sentinel"
)

const (
	// Redis key prefix for cached responses
	responseKeyPrefix = "respcache:"
)

// RedisStore shares cached responses across replicas. Expiry is delegated to
// Redis key TTLs.
type RedisStore struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns sentinel.ErrNotFound when the key is absent or has expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*models.Entry, error) {
	raw, err := s.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached response: %w", err)
	}
	var entry models.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &entry, nil
}

// Set stores entry with ttl using SET EX.
func (s *RedisStore) Set(ctx context.Context, key string, entry models.Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}
	return s.client.Set(ctx, responseKeyPrefix+key, raw, ttl).Err()
}
