package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// AnalyzerService turns one intake item into a signal by polling every provider.
type AnalyzerService interface {
	Analyze(ctx context.Context, item entity.IntakeItem) (*entity.Signal, error)
}

// NewAnalyzerService creates a new AnalyzerService. articleRepo may be nil when article
// enrichment is disabled.
func NewAnalyzerService(
	cfg config.Analyzer,
	providers []repository.AnalysisProvider,
	articleRepo repository.ArticleRepository,
	trust TrustPolicy,
	log *logger.Logger,
	now func() time.Time,
) AnalyzerService {
	if now == nil {
		now = utils.TimeNowUTC
	}
	return &analyzerService{
		cfg:         cfg,
		providers:   providers,
		articleRepo: articleRepo,
		trust:       trust,
		logger:      log,
		now:         now,
	}
}

type analyzerService struct {
	cfg         config.Analyzer
	providers   []repository.AnalysisProvider
	articleRepo repository.ArticleRepository
	trust       TrustPolicy
	logger      *logger.Logger
	now         func() time.Time
}

func (s *analyzerService) Analyze(ctx context.Context, item entity.IntakeItem) (*entity.Signal, error) {
	if len(s.providers) == 0 {
		return nil, errors.New("no analysis providers configured")
	}

	text := s.analysisText(ctx, item)

	// Results keep provider order so ties in the consensus vote are deterministic.
	results := make([]dto.ProviderResult, len(s.providers))
	opinions := make([]*dto.ProviderOpinion, len(s.providers))

	var g errgroup.Group
	for i, p := range s.providers {
		i, p := i, p
		g.Go(func() error {
			results[i], opinions[i] = s.ask(ctx, p, text)
			return nil
		})
	}
	_ = g.Wait()

	usable := make([]dto.ProviderOpinion, 0, len(opinions))
	for _, op := range opinions {
		if op != nil {
			usable = append(usable, *op)
		}
	}

	consensus := Reduce(usable)
	return BuildSignal(item, consensus, results, s.trust, s.now()), nil
}

func (s *analyzerService) ask(ctx context.Context, p repository.AnalysisProvider, text string) (result dto.ProviderResult, opinion *dto.ProviderOpinion) {
	result.Provider = p.Name()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			result.Error = err.Error()
			result.Degraded = true
			opinion = nil
			s.logger.Error("Provider panicked", logger.ErrorField(err), logger.StringField("provider", result.Provider))
		}
	}()

	reply, err := p.Analyze(ctx, text)
	if err != nil {
		result.Error = err.Error()
		result.Degraded = true
		s.logger.Warn("Provider returned a degraded opinion", logger.ErrorField(err), logger.StringField("provider", result.Provider))
	}
	if reply == nil {
		result.Degraded = true
		return result, nil
	}
	result.Opinion = reply.Opinion
	result.Raw = reply.Raw
	return result, reply.Opinion
}

func (s *analyzerService) analysisText(ctx context.Context, item entity.IntakeItem) string {
	text := fmt.Sprintf("[%s] %s\n%s", item.Sector, item.Title, item.Link)
	if !s.cfg.FetchArticleContent || s.articleRepo == nil || item.Link == "" {
		return text
	}

	articleCtx := ctx
	if s.cfg.ArticleTimeout > 0 {
		var cancel context.CancelFunc
		articleCtx, cancel = context.WithTimeout(ctx, s.cfg.ArticleTimeout)
		defer cancel()
	}

	content, err := s.articleRepo.FetchContent(articleCtx, item.Link)
	if err != nil {
		s.logger.Debug("Failed to fetch article content", logger.ErrorField(err), logger.StringField("url", item.Link))
		return text
	}
	if s.cfg.MaxContentChars > 0 {
		content = utils.Truncate(content, s.cfg.MaxContentChars)
	}
	if content == "" {
		return text
	}
	return text + "\n\n" + content
}
