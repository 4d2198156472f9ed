package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKnowledgeKey = "frontdesk:knowledge"

type RedisKnowledgeStore struct {
	client redis.UniversalClient
	key    string
}

var _ KnowledgeStore = (*RedisKnowledgeStore)(nil)

func NewRedisKnowledgeStore(client redis.UniversalClient, key string) *RedisKnowledgeStore {
	if key == "" {
		key = DefaultRedisKnowledgeKey
	}
	return &RedisKnowledgeStore{client: client, key: key}
}

func (s *RedisKnowledgeStore) Load(ctx context.Context) (string, error) {
	content, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from redis: %w", s.key, err)
	}
	return content, nil
}

func (s *RedisKnowledgeStore) Save(ctx context.Context, content string) error {
	if err := s.client.Set(ctx, s.key, content, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", s.key, err)
	}
	return nil
}
