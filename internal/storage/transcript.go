package storage

import (
	"context"

	"frontdesk-backend/pkg/models"
)

// DefaultTranscriptCapacity is the number of inquiries kept by every backend.
const DefaultTranscriptCapacity = 50

type TranscriptStore interface {
	// List returns inquiries most-recently-touched first.
	List(ctx context.Context) ([]models.Inquiry, error)

	Get(ctx context.Context, id string) (models.Inquiry, bool, error)

	// Upsert replaces the inquiry with the same id, moves it to the front and
	// evicts the least-recently-touched entries beyond capacity.
	Upsert(ctx context.Context, inquiry models.Inquiry) error

	Close() error
}

// upsertBounded applies the ordering and eviction rule shared by the list
// based backends. The input slice is not modified.
func upsertBounded(list []models.Inquiry, inquiry models.Inquiry, capacity int) []models.Inquiry {
	if capacity <= 0 {
		capacity = DefaultTranscriptCapacity
	}

	out := make([]models.Inquiry, 0, min(len(list)+1, capacity))
	out = append(out, inquiry)
	for _, existing := range list {
		if len(out) == capacity {
			break
		}
		if existing.ID == inquiry.ID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

func findInquiry(list []models.Inquiry, id string) (models.Inquiry, bool) {
	for _, inquiry := range list {
		if inquiry.ID == id {
			return inquiry, true
		}
	}
	return models.Inquiry{}, false
}
