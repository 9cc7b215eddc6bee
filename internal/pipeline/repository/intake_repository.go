package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntakeRepository defines the interface for raw intake items.
type IntakeRepository interface {
	// CreateIgnoreConflict inserts item unless its id exists and reports whether a row was written.
	CreateIgnoreConflict(ctx context.Context, item *entity.IntakeItem) (bool, error)
	// FindOrphans returns intake items with no signal yet, newest first.
	FindOrphans(ctx context.Context, limit int) ([]entity.IntakeItem, error)
	DeleteObservedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewIntakeRepository creates a new instance of IntakeRepository.
func NewIntakeRepository(db *gorm.DB, retry database.RetryPolicy) IntakeRepository {
	return &intakeRepository{db: db, retry: retry}
}

type intakeRepository struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

func (r *intakeRepository) CreateIgnoreConflict(ctx context.Context, item *entity.IntakeItem) (bool, error) {
	var inserted bool
	err := r.retry.Do(ctx, func() error {
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert intake item %s: %w", item.ID, err)
	}
	return inserted, nil
}

func (r *intakeRepository) FindOrphans(ctx context.Context, limit int) ([]entity.IntakeItem, error) {
	var items []entity.IntakeItem
	err := r.db.WithContext(ctx).
		Table("intake_items AS i").
		Select("i.*").
		Joins("LEFT JOIN signals AS s ON s.id = i.id").
		Where("s.id IS NULL").
		Order("i.observed_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orphan intake items: %w", err)
	}
	return items, nil
}

func (r *intakeRepository) DeleteObservedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.retry.Do(ctx, func() error {
		res := r.db.WithContext(ctx).Where("observed_at < ?", cutoff.UTC()).Delete(&entity.IntakeItem{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *intakeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.IntakeItem{}).Count(&n).Error
	return n, err
}
