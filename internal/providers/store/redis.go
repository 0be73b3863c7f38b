package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idbridge/internal/providers"
)

// RedisSetName is the set holding registered provider names.
const RedisSetName = "auth_providers"

// RedisStore keeps lower-cased provider names in a Redis set.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedis uses key as the set name; a blank key falls back to RedisSetName.
func NewRedis(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = RedisSetName
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Existing(ctx context.Context, names []string) (map[string]bool, error) {
	out := make(map[string]bool, len(names))
	if len(names) == 0 {
		return out, nil
	}
	members := make([]any, len(names))
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = providers.Normalize(n)
		members[i] = keys[i]
	}
	found, err := s.client.SMIsMember(ctx, s.key, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smismember: %w", err)
	}
	for i, ok := range found {
		if ok {
			out[keys[i]] = true
		}
	}
	return out, nil
}

func (s *RedisStore) Register(ctx context.Context, name string) error {
	if err := s.client.SAdd(ctx, s.key, providers.Normalize(name)).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, name string) error {
	if err := s.client.SRem(ctx, s.key, providers.Normalize(name)).Err(); err != nil {
		return fmt.Errorf("redis srem: %w", err)
	}
	return nil
}
