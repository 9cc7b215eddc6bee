package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"
)

// SignalService provides read access to signals and manages their curation.
type SignalService interface {
	GetSignals(ctx context.Context, filter dto.SignalFilter) ([]dto.SignalResponse, error)
	GetSignalByID(ctx context.Context, id string) (*dto.SignalResponse, error)
	GetStats(ctx context.Context) (*dto.SignalStats, error)
	Curate(ctx context.Context, id string, req dto.CurationRequest) (*dto.SignalResponse, error)
}

// NewSignalService creates a new SignalService.
func NewSignalService(signalRepo repository.SignalRepository, curationRepo repository.CurationRepository, log *logger.Logger) SignalService {
	return &signalService{signalRepo: signalRepo, curationRepo: curationRepo, logger: log}
}

type signalService struct {
	signalRepo   repository.SignalRepository
	curationRepo repository.CurationRepository
	logger       *logger.Logger
}

func (s *signalService) GetSignals(ctx context.Context, filter dto.SignalFilter) ([]dto.SignalResponse, error) {
	rows, err := s.signalRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.SignalResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, toSignalResponse(&rows[i]))
	}
	return resp, nil
}

func (s *signalService) GetSignalByID(ctx context.Context, id string) (*dto.SignalResponse, error) {
	row, err := s.signalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSignalResponse(row)
	return &resp, nil
}

func (s *signalService) GetStats(ctx context.Context) (*dto.SignalStats, error) {
	return s.signalRepo.Stats(ctx)
}

func (s *signalService) Curate(ctx context.Context, id string, req dto.CurationRequest) (*dto.SignalResponse, error) {
	exists, err := s.signalRepo.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check signal %s: %w", id, err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" && !utils.ContainsString(tags, t) {
			tags = append(tags, t)
		}
	}

	curation := &entity.Curation{
		SignalID: id,
		Starred:  req.Starred,
		Note:     strings.TrimSpace(req.Note),
		Tags:     strings.Join(tags, ","),
	}
	if err := s.curationRepo.Upsert(ctx, curation); err != nil {
		return nil, err
	}
	s.logger.Info("Signal curated", logger.StringField("id", id), logger.Field("starred", req.Starred))

	return s.GetSignalByID(ctx, id)
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func toSignalResponse(row *entity.SignalWithCuration) dto.SignalResponse {
	tickers := []string(row.Tickers)
	if tickers == nil {
		tickers = []string{}
	}
	return dto.SignalResponse{
		ID:              row.ID,
		PublishedAt:     row.PublishedAt.UTC(),
		IngestedAt:      row.IngestedAt.UTC(),
		Sector:          row.Sector,
		SourceDomain:    row.SourceDomain,
		URL:             row.URL,
		Title:           row.Title,
		TranslatedTitle: row.TranslatedTitle,
		Label:           row.Label,
		Region:          row.Region,
		Tickers:         tickers,
		Impact:          row.Impact,
		Confidence:      row.Confidence,
		Sentiment:       row.Sentiment,
		TrustScore:      row.TrustScore,
		IsTestSource:    row.IsTestSource,
		Providers:       utils.SplitCSV(row.Providers),
		Summary:         row.Summary,
		What:            row.What,
		WhyMatters:      row.WhyMatters,
		ActionWindow:    row.ActionWindow,
		Analysis:        row.Analysis,
		Starred:         row.Starred,
		Note:            row.Note,
		Tags:            utils.SplitCSV(row.Tags),
	}
}
