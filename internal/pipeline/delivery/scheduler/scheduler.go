// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/service"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pipeline on its configured schedule, in UTC.
type Scheduler struct {
	cron     *cron.Cron
	pipeline service.PipelineService
	cfg      config.Pipeline
	logger   *logger.Logger
	baseCtx  context.Context
}

// NewScheduler creates a Scheduler. Ticks that fire while a run is still going are skipped.
func NewScheduler(cfg config.Pipeline, pipeline service.PipelineService, log *logger.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		pipeline: pipeline,
		cfg:      cfg,
		logger:   log,
		baseCtx:  context.Background(),
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.trigger); err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start begins firing. Runs in flight see ctx cancelled on shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info("Pipeline scheduler started", logger.StringField("schedule", s.cfg.Schedule))
}

// Stop stops firing and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Pipeline scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) trigger() {
	ctx := s.baseCtx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	result, err := s.pipeline.Run(ctx, dto.RunRequest{Trigger: common.TriggerSchedule})
	if err != nil {
		s.logger.Error("Scheduled pipeline run failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled pipeline run completed",
		logger.StringField("run_id", result.RunID),
		logger.IntField("new_signals", result.Persisted),
	)
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
