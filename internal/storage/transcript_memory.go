package storage

import (
	"context"
	"sync"

	"frontdesk-backend/pkg/models"
)

type MemoryTranscriptStore struct {
	mu        sync.RWMutex
	inquiries []models.Inquiry
	capacity  int
}

var _ TranscriptStore = (*MemoryTranscriptStore)(nil)

func NewMemoryTranscriptStore(capacity int) *MemoryTranscriptStore {
	if capacity <= 0 {
		capacity = DefaultTranscriptCapacity
	}
	return &MemoryTranscriptStore{capacity: capacity}
}

func (s *MemoryTranscriptStore) List(ctx context.Context) ([]models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Inquiry, len(s.inquiries))
	copy(out, s.inquiries)
	return out, nil
}

func (s *MemoryTranscriptStore) Get(ctx context.Context, id string) (models.Inquiry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inquiry, ok := findInquiry(s.inquiries, id)
	return inquiry, ok, nil
}

func (s *MemoryTranscriptStore) Upsert(ctx context.Context, inquiry models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inquiries = upsertBounded(s.inquiries, inquiry, s.capacity)
	return nil
}

func (s *MemoryTranscriptStore) Close() error {
	return nil
}
