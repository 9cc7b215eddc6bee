package main

import (
	"context"
	"fmt"

	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/internal/pipeline/service"
	"golang-news-signal/pkg/database"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/ratelimit"
	"golang-news-signal/pkg/redis"
	"golang-news-signal/pkg/utils"
)

// app holds everything the commands share.
type app struct {
	cfg        *config.Config
	logger     *logger.Logger
	db         *database.DB
	redis      *redis.Client
	pipeline   service.PipelineService
	signals    service.SignalService
	runs       service.PipelineRunService
	closeFuncs []func()
}

func (a *app) Close() {
	for i := len(a.closeFuncs) - 1; i >= 0; i-- {
		a.closeFuncs[i]()
	}
}

func newApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: appLogger}
	a.closeFuncs = append(a.closeFuncs, func() { _ = appLogger.Sync() })

	db, err := openStore(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.closeFuncs = append(a.closeFuncs, func() { _ = db.Close() })

	if err := repository.Migrate(db.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	retry := database.RetryPolicy{Attempts: cfg.Database.RetryAttempts, Backoff: cfg.Database.RetryBackoff}
	intakeRepo := repository.NewIntakeRepository(db.DB, retry)
	signalRepo := repository.NewSignalRepository(db.DB, retry)
	curationRepo := repository.NewCurationRepository(db.DB, retry)
	runRepo := repository.NewPipelineRunRepository(db.DB, retry)

	publisher := repository.NewNoopSignalPublisher()
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			// Streaming is optional.
			appLogger.Warn("Failed to initialize Redis, signals will not be streamed", logger.ErrorField(err))
		} else {
			a.redis = client
			a.closeFuncs = append(a.closeFuncs, func() { _ = client.Close() })
			publisher = repository.NewRedisSignalPublisher(client.Client, cfg.Redis.Stream, cfg.Redis.StreamMaxLen)
		}
	}

	admission := ratelimit.NewAdmission(cfg.Analyzer.MaxConcurrentCalls)
	providers, err := repository.NewAnalysisProviders(ctx, cfg.Providers, admission, appLogger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if len(providers) == 0 {
		a.Close()
		return nil, fmt.Errorf("no analysis providers configured")
	}

	feedRepo := repository.NewFeedRepository(repository.FeedOptions{
		Timeout:      cfg.Collector.FetchTimeout,
		UserAgent:    cfg.Collector.UserAgent,
		HTMLFallback: cfg.Collector.HTMLFallback,
	}, appLogger)

	var articleRepo repository.ArticleRepository
	if cfg.Analyzer.FetchArticleContent {
		articleRepo = repository.NewArticleRepository(cfg.Analyzer.ArticleTimeout, cfg.Collector.UserAgent, appLogger)
	}

	collector := service.NewCollectorService(cfg.Collector, cfg.SectorFeeds(), feedRepo, intakeRepo, appLogger, utils.TimeNowUTC)
	reconciler := service.NewReconcilerService(intakeRepo, appLogger)
	analyzer := service.NewAnalyzerService(cfg.Analyzer, providers, articleRepo, service.NewTrustPolicy(cfg.Trust), appLogger, utils.TimeNowUTC)

	a.pipeline = service.NewPipelineService(
		cfg.Pipeline,
		collector,
		reconciler,
		analyzer,
		intakeRepo,
		signalRepo,
		runRepo,
		appLogger,
		service.WithFileLock(cfg.Pipeline.LockFile),
		service.WithPublisher(publisher),
	)
	a.signals = service.NewSignalService(signalRepo, curationRepo, appLogger)
	a.runs = service.NewPipelineRunService(runRepo, appLogger)

	appLogger.Info("Pipeline initialized",
		logger.StringField("database", db.Driver),
		logger.IntField("providers", len(providers)),
		logger.IntField("sectors", len(cfg.Pipeline.DefaultSectors)),
	)
	return a, nil
}

func openStore(cfg *config.Config) (*database.DB, error) {
	return database.NewDB(database.Config{
		Driver:          cfg.Database.Driver,
		Path:            cfg.Database.Path,
		BusyTimeout:     cfg.Database.BusyTimeout,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
}
