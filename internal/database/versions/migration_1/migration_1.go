package migration_1

import (
	"fmt"

	"gorm.io/gorm"
)

type Inquiry struct {
	UserType string `gorm:"size:20;not null;default:''"`
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&Inquiry{}, "user_type"); err != nil {
		return fmt.Errorf("error adding user_type column: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropColumn(&Inquiry{}, "user_type"); err != nil {
		return fmt.Errorf("error dropping user_type column: %w", err)
	}
	return nil
}
