package repository

import (
	"context"
	"errors"

	"golang-news-signal/internal/entity"
	"golang-news-signal/pkg/database"

	"gorm.io/gorm"
)

// PipelineRunRepository defines the interface for run history records.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entity.PipelineRun) error
	Update(ctx context.Context, run *entity.PipelineRun) error
	FindByID(ctx context.Context, id string) (*entity.PipelineRun, error)
	FindRecent(ctx context.Context, limit int) ([]entity.PipelineRun, error)
}

// NewPipelineRunRepository creates a new GORM-based pipeline run repository.
func NewPipelineRunRepository(db *gorm.DB, retry database.RetryPolicy) PipelineRunRepository {
	return &pipelineRunRepository{db: db, retry: retry}
}

type pipelineRunRepository struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

// Create inserts a new run record.
func (r *pipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return r.retry.Do(ctx, func() error {
		return r.db.WithContext(ctx).Create(run).Error
	})
}

// Update saves every field of an existing run record.
func (r *pipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.retry.Do(ctx, func() error {
		return r.db.WithContext(ctx).Save(run).Error
	})
}

// FindByID retrieves a run by its id.
func (r *pipelineRunRepository) FindByID(ctx context.Context, id string) (*entity.PipelineRun, error) {
	var run entity.PipelineRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent retrieves the latest runs, newest first.
func (r *pipelineRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.PipelineRun, error) {
	var runs []entity.PipelineRun
	if limit <= 0 {
		limit = 20
	}
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
