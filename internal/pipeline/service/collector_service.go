package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/fingerprint"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const dedupTitleRunes = 50

// CollectorService gathers fresh items from every configured source into the intake store.
type CollectorService interface {
	// Collect returns the items this run newly wrote to intake, in source order.
	Collect(ctx context.Context, sectors []string) ([]entity.IntakeItem, error)
}

// NewCollectorService creates a new CollectorService.
func NewCollectorService(
	cfg config.Collector,
	feeds map[string][]string,
	feedRepo repository.FeedRepository,
	intakeRepo repository.IntakeRepository,
	log *logger.Logger,
	now func() time.Time,
) CollectorService {
	if cfg.MaxEntriesPerSource <= 0 {
		cfg.MaxEntriesPerSource = 10
	}
	if cfg.MaxConcurrentSources <= 0 {
		cfg.MaxConcurrentSources = 4
	}
	if cfg.SeenCacheTTL <= 0 {
		cfg.SeenCacheTTL = 24 * time.Hour
	}
	if now == nil {
		now = utils.TimeNowUTC
	}
	return &collectorService{
		cfg:        cfg,
		feeds:      feeds,
		feedRepo:   feedRepo,
		intakeRepo: intakeRepo,
		logger:     log,
		seen:       cache.New(cfg.SeenCacheTTL, cfg.SeenCacheTTL*2),
		now:        now,
	}
}

type collectorService struct {
	cfg        config.Collector
	feeds      map[string][]string
	feedRepo   repository.FeedRepository
	intakeRepo repository.IntakeRepository
	logger     *logger.Logger
	seen       *cache.Cache
	now        func() time.Time
}

type sourceJob struct {
	sector  string
	url     string
	entries []dto.FeedEntry
	err     error
}

func (s *collectorService) Collect(ctx context.Context, sectors []string) ([]entity.IntakeItem, error) {
	var jobs []*sourceJob
	for _, sector := range sectors {
		sector = strings.ToUpper(strings.TrimSpace(sector))
		urls, ok := s.feeds[sector]
		if !ok {
			s.logger.Warn("No sources configured for sector", logger.StringField("sector", sector))
			continue
		}
		for _, u := range urls {
			jobs = append(jobs, &sourceJob{sector: sector, url: u})
		}
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrentSources)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			defer utils.Recover(&job.err)
			job.entries, job.err = s.feedRepo.Fetch(ctx, job.url)
			return nil
		})
	}
	_ = g.Wait()

	now := s.now().UTC()
	today := utils.StartOfDayUTC(now)
	runSeen := make(map[string]bool)
	var collected []entity.IntakeItem

	for _, job := range jobs {
		if job.err != nil {
			s.logger.Warn("Failed to fetch source, skipping",
				logger.ErrorField(job.err),
				logger.StringField("sector", job.sector),
				logger.StringField("url", job.url),
			)
			continue
		}

		entries := job.entries
		if len(entries) > s.cfg.MaxEntriesPerSource {
			entries = entries[:s.cfg.MaxEntriesPerSource]
		}

		for _, entry := range entries {
			if !utils.ShouldContinue(ctx, s.logger) {
				return collected, ctx.Err()
			}

			title := strings.TrimSpace(entry.Title)
			link := strings.TrimSpace(entry.Link)
			if title == "" && link == "" {
				continue
			}

			observed := now
			if entry.Published != nil {
				published := entry.Published.UTC()
				if published.Before(today) {
					continue
				}
				observed = published
			}

			key := link + "_" + utils.Truncate(title, dedupTitleRunes)
			if runSeen[key] {
				continue
			}
			runSeen[key] = true

			id := fingerprint.Item(link, title, job.sector)
			if _, found := s.seen.Get(id); found {
				continue
			}

			payload, err := json.Marshal(entry)
			if err != nil {
				payload = []byte("{}")
			}
			item := entity.IntakeItem{
				ID:         id,
				ObservedAt: observed.Truncate(time.Second),
				Sector:     job.sector,
				Title:      title,
				Link:       link,
				SourceURL:  job.url,
				RawPayload: datatypes.JSON(payload),
			}

			inserted, err := s.intakeRepo.CreateIgnoreConflict(ctx, &item)
			if err != nil {
				s.logger.Error("Failed to write intake item", logger.ErrorField(err), logger.StringField("id", id))
				continue
			}
			s.seen.SetDefault(id, struct{}{})
			if inserted {
				collected = append(collected, item)
			}
		}
	}

	s.logger.Info("Collection finished",
		logger.IntField("sources", len(jobs)),
		logger.IntField("collected", len(collected)),
	)
	return collected, nil
}
