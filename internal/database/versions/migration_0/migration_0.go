package migration_0

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Inquiry struct {
	Id               string         `gorm:"primaryKey;size:100"`
	Parent           string         `gorm:"not null"`
	Child            string         `gorm:"not null"`
	Topic            string
	Transcript       datatypes.JSON `gorm:"not null"`
	Confidence       string         `gorm:"size:10;not null"`
	ConfidenceScore  float64        `gorm:"not null;default:0"`
	NeedsHumanReview bool           `gorm:"not null;default:false"`
	ReviewReason     sql.NullString
	Status           string    `gorm:"size:20;not null"`
	CreationTime     time.Time `gorm:"not null"`
	LastUpdated      time.Time `gorm:"not null;index"`
}

func Migration(db *gorm.DB) error {
	return db.AutoMigrate(&Inquiry{})
}
