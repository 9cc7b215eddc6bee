package service

import (
	"context"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"
)

// PipelineRunService exposes the run history.
type PipelineRunService interface {
	GetRecentRuns(ctx context.Context, limit int) ([]dto.PipelineRunResponse, error)
	GetRunByID(ctx context.Context, id string) (*dto.PipelineRunResponse, error)
	// GetLastRun returns nil without error when no run has been recorded yet.
	GetLastRun(ctx context.Context) (*dto.PipelineRunResponse, error)
}

// NewPipelineRunService creates a new PipelineRunService.
func NewPipelineRunService(runRepo repository.PipelineRunRepository, log *logger.Logger) PipelineRunService {
	return &pipelineRunService{runRepo: runRepo, logger: log}
}

type pipelineRunService struct {
	runRepo repository.PipelineRunRepository
	logger  *logger.Logger
}

func (s *pipelineRunService) GetRecentRuns(ctx context.Context, limit int) ([]dto.PipelineRunResponse, error) {
	runs, err := s.runRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PipelineRunResponse, 0, len(runs))
	for i := range runs {
		resp = append(resp, toPipelineRunResponse(&runs[i]))
	}
	return resp, nil
}

func (s *pipelineRunService) GetRunByID(ctx context.Context, id string) (*dto.PipelineRunResponse, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPipelineRunResponse(run)
	return &resp, nil
}

func (s *pipelineRunService) GetLastRun(ctx context.Context) (*dto.PipelineRunResponse, error) {
	runs, err := s.GetRecentRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func toPipelineRunResponse(run *entity.PipelineRun) dto.PipelineRunResponse {
	resp := dto.PipelineRunResponse{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Sectors:    utils.SplitCSV(run.Sectors),
		Status:     string(run.Status),
		StartedAt:  run.StartedAt.UTC(),
		Collected:  run.Collected,
		Orphans:    run.Orphans,
		Candidates: run.Candidates,
		Persisted:  run.Persisted,
		Failed:     run.Failed,
	}
	if run.CompletedAt.Valid {
		completed := run.CompletedAt.Time.UTC()
		resp.CompletedAt = &completed
		resp.Duration = completed.Sub(resp.StartedAt).Milliseconds()
	}
	if run.Error.Valid {
		resp.Error = run.Error.String
	}
	return resp
}
