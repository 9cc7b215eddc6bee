package repository

import (
	"context"
	"fmt"

	"golang-news-signal/internal/entity"
	"golang-news-signal/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CurationRepository defines the interface for operator annotations.
type CurationRepository interface {
	Upsert(ctx context.Context, curation *entity.Curation) error
}

// NewCurationRepository creates a new instance of CurationRepository.
func NewCurationRepository(db *gorm.DB, retry database.RetryPolicy) CurationRepository {
	return &curationRepository{db: db, retry: retry}
}

type curationRepository struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

func (r *curationRepository) Upsert(ctx context.Context, curation *entity.Curation) error {
	err := r.retry.Do(ctx, func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"starred", "note", "tags", "updated_at"}),
		}).Create(curation).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert curation for %s: %w", curation.SignalID, err)
	}
	return nil
}
