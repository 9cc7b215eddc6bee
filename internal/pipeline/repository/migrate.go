package repository

import (
	"fmt"

	"golang-news-signal/internal/entity"

	"gorm.io/gorm"
)

// Migrate creates missing tables, columns and indexes. It is safe to call on every open.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.IntakeItem{},
		&entity.Signal{},
		&entity.Curation{},
		&entity.PipelineRun{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
