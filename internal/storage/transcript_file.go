package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"frontdesk-backend/pkg/models"
)

// FileTranscriptStore keeps the inquiries as one JSON array on disk.
type FileTranscriptStore struct {
	mu       sync.Mutex
	path     string
	capacity int
}

var _ TranscriptStore = (*FileTranscriptStore)(nil)

func NewFileTranscriptStore(path string, capacity int) (*FileTranscriptStore, error) {
	if capacity <= 0 {
		capacity = DefaultTranscriptCapacity
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return &FileTranscriptStore{path: path, capacity: capacity}, nil
}

func (s *FileTranscriptStore) read() ([]models.Inquiry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Inquiry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []models.Inquiry{}, nil
	}

	var inquiries []models.Inquiry
	if err := json.Unmarshal(data, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return inquiries, nil
}

func (s *FileTranscriptStore) write(inquiries []models.Inquiry) error {
	data, err := json.MarshalIndent(inquiries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode inquiries: %w", err)
	}

	return writeFileAtomic(s.path, data)
}

func (s *FileTranscriptStore) List(ctx context.Context) ([]models.Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileTranscriptStore) Get(ctx context.Context, id string) (models.Inquiry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inquiries, err := s.read()
	if err != nil {
		return models.Inquiry{}, false, err
	}
	inquiry, ok := findInquiry(inquiries, id)
	return inquiry, ok, nil
}

func (s *FileTranscriptStore) Upsert(ctx context.Context, inquiry models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inquiries, err := s.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write.
		slog.Warn("discarding unreadable transcript file", "path", s.path, "error", err)
		inquiries = nil
	}

	return s.write(upsertBounded(inquiries, inquiry, s.capacity))
}

func (s *FileTranscriptStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
