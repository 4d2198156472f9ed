package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"frontdesk-backend/internal/database"
	"frontdesk-backend/pkg/models"
)

// SQLite only supports one writer at a time, so writes take this lock when
// the backing database is sqlite.
var dbMutex sync.Mutex

type DatabaseTranscriptStore struct {
	db       *gorm.DB
	capacity int
	sqlite   bool
}

var _ TranscriptStore = (*DatabaseTranscriptStore)(nil)

func NewDatabaseTranscriptStore(db *gorm.DB, capacity int) *DatabaseTranscriptStore {
	if capacity <= 0 {
		capacity = DefaultTranscriptCapacity
	}
	return &DatabaseTranscriptStore{db: db, capacity: capacity, sqlite: database.IsSQLite(db)}
}

func (s *DatabaseTranscriptStore) List(ctx context.Context) ([]models.Inquiry, error) {
	var records []database.Inquiry
	if err := s.db.WithContext(ctx).Order("last_updated DESC").Limit(s.capacity).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}

	inquiries := make([]models.Inquiry, 0, len(records))
	for _, record := range records {
		inquiry, err := inquiryFromRecord(record)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, nil
}

func (s *DatabaseTranscriptStore) Get(ctx context.Context, id string) (models.Inquiry, bool, error) {
	var record database.Inquiry
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Inquiry{}, false, nil
	}
	if err != nil {
		return models.Inquiry{}, false, fmt.Errorf("failed to get inquiry %s: %w", id, err)
	}

	inquiry, err := inquiryFromRecord(record)
	if err != nil {
		return models.Inquiry{}, false, err
	}
	return inquiry, true, nil
}

func (s *DatabaseTranscriptStore) Upsert(ctx context.Context, inquiry models.Inquiry) error {
	record, err := inquiryToRecord(inquiry)
	if err != nil {
		return err
	}

	if s.sqlite {
		dbMutex.Lock()
		defer dbMutex.Unlock()
	}

	return s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save inquiry %s: %w", inquiry.ID, err)
		}

		// Keep the upserted inquiry plus the capacity-1 most recently touched others.
		keep := txn.Model(&database.Inquiry{}).
			Select("id").
			Where("id <> ?", inquiry.ID).
			Order("last_updated DESC").
			Limit(s.capacity - 1)

		if err := txn.Where("id <> ? AND id NOT IN (?)", inquiry.ID, keep).Delete(&database.Inquiry{}).Error; err != nil {
			return fmt.Errorf("failed to evict old inquiries: %w", err)
		}
		return nil
	})
}

func (s *DatabaseTranscriptStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func inquiryToRecord(inquiry models.Inquiry) (database.Inquiry, error) {
	transcript := inquiry.Transcript
	if transcript == nil {
		transcript = []models.Message{}
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return database.Inquiry{}, fmt.Errorf("failed to encode transcript: %w", err)
	}

	var reviewReason sql.NullString
	if inquiry.ReviewReason != nil {
		reviewReason = sql.NullString{String: *inquiry.ReviewReason, Valid: true}
	}

	return database.Inquiry{
		Id:               inquiry.ID,
		Parent:           inquiry.Parent,
		Child:            inquiry.Child,
		Topic:            inquiry.Topic,
		Transcript:       datatypes.JSON(data),
		Confidence:       string(inquiry.Confidence),
		ConfidenceScore:  inquiry.ConfidenceScore,
		NeedsHumanReview: inquiry.NeedsHumanReview,
		ReviewReason:     reviewReason,
		Status:           inquiry.Status,
		UserType:         string(inquiry.UserType),
		CreationTime:     inquiry.Timestamp.UTC(),
		LastUpdated:      inquiry.LastUpdated.UTC(),
	}, nil
}

func inquiryFromRecord(record database.Inquiry) (models.Inquiry, error) {
	var transcript []models.Message
	if err := json.Unmarshal(record.Transcript, &transcript); err != nil {
		return models.Inquiry{}, fmt.Errorf("invalid transcript JSON for inquiry %s: %w", record.Id, err)
	}

	var reviewReason *string
	if record.ReviewReason.Valid {
		reason := record.ReviewReason.String
		reviewReason = &reason
	}

	return models.Inquiry{
		ID:               record.Id,
		Parent:           record.Parent,
		Child:            record.Child,
		Topic:            record.Topic,
		Transcript:       transcript,
		Confidence:       models.ConfidenceLevel(record.Confidence),
		ConfidenceScore:  record.ConfidenceScore,
		NeedsHumanReview: record.NeedsHumanReview,
		ReviewReason:     reviewReason,
		Status:           record.Status,
		UserType:         models.UserType(record.UserType),
		Timestamp:        record.CreationTime,
		LastUpdated:      record.LastUpdated,
	}, nil
}
