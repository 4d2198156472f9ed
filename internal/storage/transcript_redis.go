package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"frontdesk-backend/pkg/models"
)

const (
	DefaultRedisTranscriptKey = "frontdesk:inquiries"
)

// RedisTranscriptStore keeps the whole bounded list under a single key. Writes
// are read-modify-write under a redsync lock so concurrent replicas do not
// drop each other's updates.
type RedisTranscriptStore struct {
	client   redis.UniversalClient
	rs       *redsync.Redsync
	key      string
	capacity int
}

var _ TranscriptStore = (*RedisTranscriptStore)(nil)

func NewRedisTranscriptStore(client redis.UniversalClient, key string, capacity int) *RedisTranscriptStore {
	if key == "" {
		key = DefaultRedisTranscriptKey
	}
	if capacity <= 0 {
		capacity = DefaultTranscriptCapacity
	}
	return &RedisTranscriptStore{
		client:   client,
		rs:       redsync.New(goredis.NewPool(client)),
		key:      key,
		capacity: capacity,
	}
}

func (s *RedisTranscriptStore) read(ctx context.Context) ([]models.Inquiry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Inquiry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", s.key, err)
	}

	var inquiries []models.Inquiry
	if err := json.Unmarshal(data, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to parse %s from redis: %w", s.key, err)
	}
	return inquiries, nil
}

func (s *RedisTranscriptStore) List(ctx context.Context) ([]models.Inquiry, error) {
	return s.read(ctx)
}

func (s *RedisTranscriptStore) Get(ctx context.Context, id string) (models.Inquiry, bool, error) {
	inquiries, err := s.read(ctx)
	if err != nil {
		return models.Inquiry{}, false, err
	}
	inquiry, ok := findInquiry(inquiries, id)
	return inquiry, ok, nil
}

func (s *RedisTranscriptStore) Upsert(ctx context.Context, inquiry models.Inquiry) error {
	return withLock(ctx, s.rs, s.key+":lock", func() error {
		inquiries, err := s.read(ctx)
		if err != nil {
			return err
		}

		data, err := json.Marshal(upsertBounded(inquiries, inquiry, s.capacity))
		if err != nil {
			return fmt.Errorf("failed to encode inquiries: %w", err)
		}

		if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
			return fmt.Errorf("failed to write %s to redis: %w", s.key, err)
		}
		return nil
	})
}

// Close is a no-op: the client is shared with other stores and closed by its owner.
func (s *RedisTranscriptStore) Close() error {
	return nil
}
