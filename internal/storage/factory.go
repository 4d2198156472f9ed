package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"frontdesk-backend/internal/database"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendS3       = "s3"
)

type Config struct {
	TranscriptBackend  string
	TranscriptFile     string
	TranscriptCapacity int

	KnowledgeBackend string
	KnowledgeFile    string

	DatabaseURL string
	RedisURL    string

	S3          S3ClientConfig
	S3Bucket    string
	S3ObjectKey string
}

// Stores owns the transcript and knowledge stores and any client they share.
type Stores struct {
	Transcripts TranscriptStore
	Knowledge   KnowledgeStore

	redis redis.UniversalClient
}

func OpenStores(ctx context.Context, cfg Config) (*Stores, error) {
	stores := &Stores{}

	transcripts, err := stores.openTranscripts(cfg)
	if err != nil {
		stores.Close()
		return nil, err
	}
	stores.Transcripts = transcripts

	knowledge, err := stores.openKnowledge(ctx, cfg)
	if err != nil {
		stores.Close()
		return nil, err
	}
	stores.Knowledge = knowledge

	slog.Info("storage initialized", "transcripts", cfg.TranscriptBackend, "knowledge", cfg.KnowledgeBackend)
	return stores, nil
}

func (s *Stores) redisClient(url string) (redis.UniversalClient, error) {
	if s.redis != nil {
		return s.redis, nil
	}
	client, err := NewRedisClient(url)
	if err != nil {
		return nil, err
	}
	s.redis = client
	return client, nil
}

func (s *Stores) openTranscripts(cfg Config) (TranscriptStore, error) {
	switch cfg.TranscriptBackend {
	case "", BackendMemory:
		return NewMemoryTranscriptStore(cfg.TranscriptCapacity), nil
	case BackendFile:
		return NewFileTranscriptStore(cfg.TranscriptFile, cfg.TranscriptCapacity)
	case BackendRedis:
		client, err := s.redisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisTranscriptStore(client, "", cfg.TranscriptCapacity), nil
	case BackendDatabase:
		db, err := database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewDatabaseTranscriptStore(db, cfg.TranscriptCapacity), nil
	default:
		return nil, fmt.Errorf("unknown transcript backend %q", cfg.TranscriptBackend)
	}
}

func (s *Stores) openKnowledge(ctx context.Context, cfg Config) (KnowledgeStore, error) {
	switch cfg.KnowledgeBackend {
	case "", BackendFile:
		return NewFileKnowledgeStore(cfg.KnowledgeFile)
	case BackendMemory:
		return NewMemoryKnowledgeStore(""), nil
	case BackendRedis:
		client, err := s.redisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisKnowledgeStore(client, ""), nil
	case BackendS3:
		return NewS3KnowledgeStore(ctx, cfg.S3, cfg.S3Bucket, cfg.S3ObjectKey)
	default:
		return nil, fmt.Errorf("unknown knowledge backend %q", cfg.KnowledgeBackend)
	}
}

func (s *Stores) Close() error {
	var errs []error
	if s.Transcripts != nil {
		if err := s.Transcripts.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing transcript store: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing redis client: %w", err))
		}
	}
	return errors.Join(errs...)
}
