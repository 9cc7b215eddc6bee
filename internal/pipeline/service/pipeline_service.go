package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// State is the coordinator's current phase.
type State string

const (
	StateIdle           State = "idle"
	StateRetentionSweep State = "retention_sweep"
	StateCollecting     State = "collecting"
	StateReconciling    State = "reconciling"
	StateAnalyzing      State = "analyzing"
)

const fileLockRetryDelay = 500 * time.Millisecond

// PipelineService runs the ingest, reconcile, analyze and persist cycle.
// At most one run executes at a time; concurrent callers wait their turn.
type PipelineService interface {
	Run(ctx context.Context, req dto.RunRequest) (*dto.RunResult, error)
	State() State
}

// PipelineOption customizes a PipelineService.
type PipelineOption func(*pipelineService)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) PipelineOption {
	return func(s *pipelineService) { s.now = now }
}

// WithFileLock also serializes runs across processes sharing the lock file.
func WithFileLock(path string) PipelineOption {
	return func(s *pipelineService) {
		if path != "" {
			s.fileLock = flock.New(path)
		}
	}
}

// WithPublisher announces every newly persisted signal.
func WithPublisher(p repository.SignalPublisher) PipelineOption {
	return func(s *pipelineService) { s.publisher = p }
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(
	cfg config.Pipeline,
	collector CollectorService,
	reconciler ReconcilerService,
	analyzer AnalyzerService,
	intakeRepo repository.IntakeRepository,
	signalRepo repository.SignalRepository,
	runRepo repository.PipelineRunRepository,
	log *logger.Logger,
	opts ...PipelineOption,
) PipelineService {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if cfg.OrphanLimit <= 0 {
		cfg.OrphanLimit = 100
	}

	s := &pipelineService{
		cfg:        cfg,
		collector:  collector,
		reconciler: reconciler,
		analyzer:   analyzer,
		intakeRepo: intakeRepo,
		signalRepo: signalRepo,
		runRepo:    runRepo,
		publisher:  repository.NewNoopSignalPublisher(),
		logger:     log,
		now:        utils.TimeNowUTC,
		runLock:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(StateIdle)
	return s
}

type pipelineService struct {
	cfg        config.Pipeline
	collector  CollectorService
	reconciler ReconcilerService
	analyzer   AnalyzerService
	intakeRepo repository.IntakeRepository
	signalRepo repository.SignalRepository
	runRepo    repository.PipelineRunRepository
	publisher  repository.SignalPublisher
	logger     *logger.Logger
	now        func() time.Time

	runLock  chan struct{}
	fileLock *flock.Flock
	state    atomic.Value
}

func (s *pipelineService) State() State {
	return s.state.Load().(State)
}

func (s *pipelineService) setState(st State) {
	s.state.Store(st)
}

func (s *pipelineService) Run(ctx context.Context, req dto.RunRequest) (*dto.RunResult, error) {
	select {
	case s.runLock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire run lock: %w", ctx.Err())
	}
	defer func() { <-s.runLock }()

	if s.fileLock != nil {
		locked, err := s.fileLock.TryLockContext(ctx, fileLockRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire file lock %s: %w", s.fileLock.Path(), err)
		}
		if !locked {
			return nil, fmt.Errorf("failed to acquire file lock %s", s.fileLock.Path())
		}
		defer func() {
			if err := s.fileLock.Unlock(); err != nil {
				s.logger.Error("Failed to release file lock", logger.ErrorField(err))
			}
		}()
	}
	defer s.setState(StateIdle)

	sectors := s.sectors(req.Sectors)
	trigger := req.Trigger
	if trigger == "" {
		trigger = common.TriggerManual
	}

	run := &entity.PipelineRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Sectors:   strings.Join(sectors, ","),
		Status:    entity.RunStatusRunning,
		StartedAt: s.now().UTC(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Error("Failed to record pipeline run", logger.ErrorField(err), logger.StringField("run_id", run.ID))
	}

	log := s.logger.With(logger.StringField("run_id", run.ID), logger.StringField("trigger", trigger))
	log.Info("Pipeline run started", logger.StringField("sectors", run.Sectors))

	result := &dto.RunResult{RunID: run.ID}

	s.setState(StateRetentionSweep)
	s.sweep(ctx, log)

	s.setState(StateCollecting)
	collected, err := s.collector.Collect(ctx, sectors)
	if err != nil {
		log.Error("Collection stopped early", logger.ErrorField(err))
	}
	result.Collected = len(collected)

	s.setState(StateReconciling)
	orphans, err := s.reconciler.FindOrphans(ctx, s.cfg.OrphanLimit)
	if err != nil {
		log.Error("Failed to recover orphans", logger.ErrorField(err))
	}
	result.Orphans = len(orphans)

	candidates := MergeCandidates(collected, orphans)
	result.Candidates = len(candidates)

	s.setState(StateAnalyzing)
	for _, item := range candidates {
		// Unprocessed candidates stay in intake and come back as orphans next run.
		if !utils.ShouldContinue(ctx, log) {
			break
		}
		persisted, err := s.processCandidate(ctx, item)
		if err != nil {
			result.Failed++
			log.Error("Failed to process candidate", logger.ErrorField(err), logger.StringField("id", item.ID))
			continue
		}
		if persisted {
			result.Persisted++
		}
	}

	s.finish(run, result, ctx.Err(), log)
	log.Info("Pipeline run finished",
		logger.IntField("collected", result.Collected),
		logger.IntField("orphans", result.Orphans),
		logger.IntField("candidates", result.Candidates),
		logger.IntField("persisted", result.Persisted),
		logger.IntField("failed", result.Failed),
	)
	return result, nil
}

func (s *pipelineService) processCandidate(ctx context.Context, item entity.IntakeItem) (persisted bool, err error) {
	defer utils.Recover(&err)

	signal, err := s.analyzer.Analyze(ctx, item)
	if err != nil {
		return false, fmt.Errorf("failed to analyze item: %w", err)
	}

	persisted, err = s.signalRepo.CreateIgnoreConflict(ctx, signal)
	if err != nil {
		return false, err
	}
	if persisted {
		if err := s.publisher.Publish(ctx, signal); err != nil {
			s.logger.Warn("Failed to publish signal", logger.ErrorField(err), logger.StringField("id", signal.ID))
		}
	}
	return persisted, nil
}

// sweep never fails a run; errors are logged and the run continues.
func (s *pipelineService) sweep(ctx context.Context, log *logger.Logger) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)

	signals, err := s.signalRepo.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		log.Error("Failed to sweep expired signals", logger.ErrorField(err))
	}
	intake, err := s.intakeRepo.DeleteObservedBefore(ctx, cutoff)
	if err != nil {
		log.Error("Failed to sweep expired intake items", logger.ErrorField(err))
	}
	if signals > 0 || intake > 0 {
		log.Info("Retention sweep removed expired rows",
			logger.Int64Field("signals", signals),
			logger.Int64Field("intake_items", intake),
		)
	}
}

func (s *pipelineService) finish(run *entity.PipelineRun, result *dto.RunResult, runErr error, log *logger.Logger) {
	run.Status = entity.RunStatusCompleted
	if runErr != nil {
		run.Status = entity.RunStatusFailed
		run.Error = sql.NullString{String: runErr.Error(), Valid: true}
	}
	run.CompletedAt = sql.NullTime{Time: s.now().UTC(), Valid: true}
	run.Collected = result.Collected
	run.Orphans = result.Orphans
	run.Candidates = result.Candidates
	run.Persisted = result.Persisted
	run.Failed = result.Failed

	// The run context may already be cancelled; history is still worth keeping.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.runRepo.Update(ctx, run); err != nil {
		log.Error("Failed to update pipeline run", logger.ErrorField(err))
	}
}

func (s *pipelineService) sectors(requested []string) []string {
	src := requested
	if len(src) == 0 {
		src = s.cfg.DefaultSectors
	}
	out := make([]string, 0, len(src))
	seen := map[string]bool{}
	for _, sec := range src {
		sec = strings.ToUpper(strings.TrimSpace(sec))
		if sec == "" || seen[sec] {
			continue
		}
		seen[sec] = true
		out = append(out, sec)
	}
	return out
}
