package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const DefaultKnowledgePath = "data/knowledge.md"

// KnowledgeStore holds the single free-text knowledge document.
type KnowledgeStore interface {
	// Load returns "" with a nil error when no document has been saved yet.
	Load(ctx context.Context) (string, error)

	Save(ctx context.Context, content string) error
}

type MemoryKnowledgeStore struct {
	mu      sync.RWMutex
	content string
}

var _ KnowledgeStore = (*MemoryKnowledgeStore)(nil)

func NewMemoryKnowledgeStore(content string) *MemoryKnowledgeStore {
	return &MemoryKnowledgeStore{content: content}
}

func (s *MemoryKnowledgeStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content, nil
}

func (s *MemoryKnowledgeStore) Save(ctx context.Context, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	return nil
}

type FileKnowledgeStore struct {
	mu   sync.RWMutex
	path string
}

var _ KnowledgeStore = (*FileKnowledgeStore)(nil)

func NewFileKnowledgeStore(path string) (*FileKnowledgeStore, error) {
	if path == "" {
		path = DefaultKnowledgePath
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return &FileKnowledgeStore{path: path}, nil
}

func (s *FileKnowledgeStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read knowledge file %s: %w", s.path, err)
	}
	return string(data), nil
}

func (s *FileKnowledgeStore) Save(ctx context.Context, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeFileAtomic(s.path, []byte(content))
}

// SeedKnowledge saves the contents of seedFile when the store is still empty.
func SeedKnowledge(ctx context.Context, store KnowledgeStore, seedFile string) error {
	if seedFile == "" {
		return nil
	}

	current, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to check knowledge store before seeding: %w", err)
	}
	if strings.TrimSpace(current) != "" {
		return nil
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read knowledge seed file %s: %w", seedFile, err)
	}

	if err := store.Save(ctx, string(data)); err != nil {
		return fmt.Errorf("failed to seed knowledge store: %w", err)
	}

	slog.Info("seeded knowledge base", "file", seedFile, "bytes", len(data))
	return nil
}
