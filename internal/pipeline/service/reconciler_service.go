package service

import (
	"context"
	"fmt"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
)

// ReconcilerService finds intake items that never reached the signal store.
type ReconcilerService interface {
	FindOrphans(ctx context.Context, limit int) ([]entity.IntakeItem, error)
}

// NewReconcilerService creates a new ReconcilerService.
func NewReconcilerService(intakeRepo repository.IntakeRepository, log *logger.Logger) ReconcilerService {
	return &reconcilerService{intakeRepo: intakeRepo, logger: log}
}

type reconcilerService struct {
	intakeRepo repository.IntakeRepository
	logger     *logger.Logger
}

func (s *reconcilerService) FindOrphans(ctx context.Context, limit int) ([]entity.IntakeItem, error) {
	orphans, err := s.intakeRepo.FindOrphans(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphans: %w", err)
	}
	if len(orphans) > 0 {
		s.logger.Info("Recovered orphaned intake items", logger.IntField("orphans", len(orphans)))
	}
	return orphans, nil
}

// MergeCandidates returns collected followed by orphans, keeping the first occurrence of each id.
func MergeCandidates(collected, orphans []entity.IntakeItem) []entity.IntakeItem {
	seen := make(map[string]bool, len(collected)+len(orphans))
	out := make([]entity.IntakeItem, 0, len(collected)+len(orphans))
	for _, list := range [][]entity.IntakeItem{collected, orphans} {
		for _, item := range list {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			out = append(out, item)
		}
	}
	return out
}
