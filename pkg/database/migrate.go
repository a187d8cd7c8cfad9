package database

import (
	"effisense-go/internal/model"
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates every table, foreign key and index.
// Parents are listed before children so the FK targets exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Home{},
		&model.Appliance{},
		&model.Usage{},
		&model.ChatMessageLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
