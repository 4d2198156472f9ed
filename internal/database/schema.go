package database

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Inquiry is one session's conversation as shown on the admin dashboard.
type Inquiry struct {
	Id     string `gorm:"primaryKey;size:100"`
	Parent string `gorm:"not null"`
	Child  string `gorm:"not null"`
	Topic  string

	// JSON array of models.Message.
	Transcript datatypes.JSON `gorm:"not null"`

	Confidence       string  `gorm:"size:10;not null"`
	ConfidenceScore  float64 `gorm:"not null;default:0"`
	NeedsHumanReview bool    `gorm:"not null;default:false"`
	ReviewReason     sql.NullString
	Status           string `gorm:"size:20;not null"`
	UserType         string `gorm:"size:20;not null;default:''"`

	CreationTime time.Time `gorm:"not null"`
	LastUpdated  time.Time `gorm:"not null;index"`
}
