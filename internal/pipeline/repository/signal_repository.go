package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("record not found")

// SignalRepository defines the interface for analyzed signals.
type SignalRepository interface {
	// CreateIgnoreConflict inserts signal unless its id exists and reports whether a row was written.
	CreateIgnoreConflict(ctx context.Context, signal *entity.Signal) (bool, error)
	// DeletePublishedBefore removes signals older than cutoff along with their curation rows.
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	FindAll(ctx context.Context, filter dto.SignalFilter) ([]entity.SignalWithCuration, error)
	FindByID(ctx context.Context, id string) (*entity.SignalWithCuration, error)
	Exists(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*dto.SignalStats, error)
}

// NewSignalRepository creates a new instance of SignalRepository.
func NewSignalRepository(db *gorm.DB, retry database.RetryPolicy) SignalRepository {
	return &signalRepository{db: db, retry: retry}
}

type signalRepository struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

func (r *signalRepository) CreateIgnoreConflict(ctx context.Context, signal *entity.Signal) (bool, error) {
	var inserted bool
	err := r.retry.Do(ctx, func() error {
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(signal)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert signal %s: %w", signal.ID, err)
	}
	return inserted, nil
}

func (r *signalRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.retry.Do(ctx, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			stale := tx.Model(&entity.Signal{}).Select("id").Where("published_at < ?", cutoff.UTC())
			if err := tx.Where("signal_id IN (?)", stale).Delete(&entity.Curation{}).Error; err != nil {
				return err
			}
			res := tx.Where("published_at < ?", cutoff.UTC()).Delete(&entity.Signal{})
			deleted = res.RowsAffected
			return res.Error
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete signals published before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return deleted, nil
}

func (r *signalRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("signals AS s").
		Select("s.*, COALESCE(c.starred, ?) AS starred, COALESCE(c.note, '') AS note, COALESCE(c.tags, '') AS tags", false).
		Joins("LEFT OUTER JOIN curations AS c ON c.signal_id = s.id")
}

func (r *signalRepository) FindAll(ctx context.Context, filter dto.SignalFilter) ([]entity.SignalWithCuration, error) {
	q := r.baseQuery(ctx)

	if filter.Label != "" {
		q = q.Where("s.label = ?", strings.ToLower(filter.Label))
	}
	if filter.Sector != "" {
		q = q.Where("s.sector = ?", strings.ToUpper(filter.Sector))
	}
	if filter.Region != "" {
		q = q.Where("s.region = ?", strings.ToUpper(filter.Region))
	}
	if filter.MinImpact > 0 {
		q = q.Where("s.impact >= ?", filter.MinImpact)
	}
	if filter.MinConfidence > 0 {
		q = q.Where("s.confidence >= ?", filter.MinConfidence)
	}
	if filter.Sentiment != nil {
		q = q.Where("s.sentiment = ?", *filter.Sentiment)
	}
	if filter.StarredOnly {
		q = q.Where("c.starred = ?", true)
	}
	if filter.HideTest {
		q = q.Where("s.is_test_source = ?", false)
	}
	if filter.DateFrom != nil {
		q = q.Where("s.published_at >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		q = q.Where("s.published_at < ?", filter.DateTo.UTC().AddDate(0, 0, 1))
	}
	if len(filter.Tickers) > 0 {
		var (
			conds []string
			args  []interface{}
		)
		for _, t := range filter.Tickers {
			if t = strings.ToUpper(strings.TrimSpace(t)); t == "" {
				continue
			}
			conds = append(conds, "(',' || s.tickers || ',') LIKE ?")
			args = append(args, "%,"+t+",%")
		}
		if len(conds) > 0 {
			q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = dto.DefaultSignalLimit
	}
	if limit > dto.MaxSignalLimit {
		limit = dto.MaxSignalLimit
	}

	var rows []entity.SignalWithCuration
	if err := q.Order("s.published_at DESC").Order("s.id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	return rows, nil
}

func (r *signalRepository) FindByID(ctx context.Context, id string) (*entity.SignalWithCuration, error) {
	var rows []entity.SignalWithCuration
	if err := r.baseQuery(ctx).Where("s.id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find signal %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (r *signalRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Signal{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *signalRepository) Stats(ctx context.Context) (*dto.SignalStats, error) {
	var stats dto.SignalStats
	err := r.db.WithContext(ctx).
		Model(&entity.Signal{}).
		Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN impact >= 70 THEN 1 ELSE 0 END), 0) AS high_impact,
		COALESCE(SUM(CASE WHEN impact >= 40 AND impact < 70 THEN 1 ELSE 0 END), 0) AS medium_impact,
		COALESCE(SUM(CASE WHEN impact < 40 THEN 1 ELSE 0 END), 0) AS low_impact,
		COALESCE(AVG(confidence), 0) AS avg_confidence,
		COALESCE(SUM(CASE WHEN sentiment > 0 THEN 1 ELSE 0 END), 0) AS bullish,
		COALESCE(SUM(CASE WHEN sentiment < 0 THEN 1 ELSE 0 END), 0) AS bearish,
		COUNT(DISTINCT sector) AS sectors,
		COUNT(DISTINCT region) AS regions`).
		Where("is_test_source = ?", false).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute signal stats: %w", err)
	}
	return &stats, nil
}
