package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/internal/testsupport"
	"golang-news-signal/pkg/fingerprint"
	"golang-news-signal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	svc        PipelineService
	intakeRepo repository.IntakeRepository
	signalRepo repository.SignalRepository
	runRepo    repository.PipelineRunRepository
	feeds      *fakeFeedRepository
	alpha      *fakeProvider
	beta       *fakeProvider
	analyzer   *failingAnalyzer
	publisher  *recordingPublisher
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	db := testsupport.MustOpenStore(t)
	retry := testsupport.NoSleepRetry()
	log := logger.NewNop()

	f := &pipelineFixture{
		intakeRepo: repository.NewIntakeRepository(db.DB, retry),
		signalRepo: repository.NewSignalRepository(db.DB, retry),
		runRepo:    repository.NewPipelineRunRepository(db.DB, retry),
		feeds: &fakeFeedRepository{entries: map[string][]dto.FeedEntry{
			"https://feeds.test/crypto": {
				{Title: "SEC approves spot ETF", Link: "https://www.sec.gov/news/etf", Published: at(testNow.Add(-time.Hour))},
				{Title: "Exchange lists new token", Link: "https://example.com/token", Published: at(testNow.Add(-2 * time.Hour))},
			},
		}},
		alpha:     &fakeProvider{name: "alpha", opinion: opinion("regulatory", 80, 90)},
		beta:      &fakeProvider{name: "beta", opinion: opinion("macro", 60, 70)},
		publisher: &recordingPublisher{},
	}

	collector := NewCollectorService(config.Collector{}, map[string][]string{"CRYPTO": {"https://feeds.test/crypto"}}, f.feeds, f.intakeRepo, log, fixedClock)
	analyzer := NewAnalyzerService(
		config.Analyzer{},
		[]repository.AnalysisProvider{f.alpha, f.beta},
		nil,
		NewTrustPolicy(config.Trust{OfficialDomains: []string{"sec.gov"}, TestDomains: []string{"example.com"}}),
		log,
		fixedClock,
	)
	f.analyzer = &failingAnalyzer{inner: analyzer}

	f.svc = NewPipelineService(
		config.Pipeline{RetentionDays: 7, OrphanLimit: 100, DefaultSectors: []string{"CRYPTO"}},
		collector,
		NewReconcilerService(f.intakeRepo, log),
		f.analyzer,
		f.intakeRepo, f.signalRepo, f.runRepo,
		log,
		WithClock(fixedClock),
		WithPublisher(f.publisher),
	)
	return f
}

func TestRunReachesConsensusAndIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	result, err := f.svc.Run(ctx, dto.RunRequest{Trigger: "manual"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Collected)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 2, result.Persisted)
	assert.Zero(t, result.Failed)
	assert.Equal(t, StateIdle, f.svc.State())

	id := fingerprint.Item("https://www.sec.gov/news/etf", "SEC approves spot ETF", "CRYPTO")
	sig, err := f.signalRepo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 60, sig.Impact)
	assert.Equal(t, 70, sig.Confidence)
	assert.Equal(t, "regulatory", sig.Label)
	assert.Equal(t, "alpha,beta", sig.Providers)
	assert.Equal(t, 1.0, sig.TrustScore)
	assert.False(t, sig.IsTestSource)

	probe, err := f.signalRepo.FindByID(ctx, fingerprint.Item("https://example.com/token", "Exchange lists new token", "CRYPTO"))
	require.NoError(t, err)
	assert.True(t, probe.IsTestSource)

	assert.Len(t, f.publisher.ids, 2)

	second, err := f.svc.Run(ctx, dto.RunRequest{Trigger: "manual"})
	require.NoError(t, err)
	assert.Zero(t, second.Collected)
	assert.Zero(t, second.Orphans)
	assert.Zero(t, second.Persisted)
	assert.EqualValues(t, 2, f.alpha.calls.Load())

	run, err := f.runRepo.FindByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Persisted)
	assert.Equal(t, "CRYPTO", run.Sectors)
}

func TestRunRecoversOrphans(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	orphan := &entity.IntakeItem{
		ID:         fingerprint.Item("https://news.test/crashed", "Written before a crash", "TREASURY"),
		ObservedAt: testNow.Add(-3 * time.Hour),
		Sector:     "TREASURY",
		Title:      "Written before a crash",
		Link:       "https://news.test/crashed",
	}
	_, err := f.intakeRepo.CreateIgnoreConflict(ctx, orphan)
	require.NoError(t, err)

	result, err := f.svc.Run(ctx, dto.RunRequest{Sectors: []string{"crypto"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Orphans)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 3, result.Persisted)

	exists, err := f.signalRepo.Exists(ctx, orphan.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunCountsFailuresAndRetriesThemLater(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	failing := fingerprint.Item("https://example.com/token", "Exchange lists new token", "CRYPTO")
	f.analyzer.failID.Store(failing)

	result, err := f.svc.Run(ctx, dto.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Persisted)

	f.analyzer.failID.Store("")
	result, err = f.svc.Run(ctx, dto.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Orphans)
	assert.Equal(t, 1, result.Persisted)
	assert.Zero(t, result.Failed)
}

func TestRunSurvivesPanickingProvider(t *testing.T) {
	f := newPipelineFixture(t)
	f.beta.panics = true

	result, err := f.svc.Run(context.Background(), dto.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Persisted)

	sig, err := f.signalRepo.FindByID(context.Background(), fingerprint.Item("https://www.sec.gov/news/etf", "SEC approves spot ETF", "CRYPTO"))
	require.NoError(t, err)
	assert.Equal(t, 80, sig.Impact)
	assert.Equal(t, "alpha,beta", sig.Providers)
}

func TestRunSweepsExpiredRows(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	stale := &entity.Signal{ID: "stale", PublishedAt: testNow.AddDate(0, 0, -8), IngestedAt: testNow.AddDate(0, 0, -8), Sector: "CRYPTO", Title: "old"}
	kept := &entity.Signal{ID: "kept", PublishedAt: testNow.AddDate(0, 0, -6), IngestedAt: testNow.AddDate(0, 0, -6), Sector: "CRYPTO", Title: "recent"}
	for _, s := range []*entity.Signal{stale, kept} {
		_, err := f.signalRepo.CreateIgnoreConflict(ctx, s)
		require.NoError(t, err)
	}

	_, err := f.svc.Run(ctx, dto.RunRequest{})
	require.NoError(t, err)

	_, err = f.signalRepo.FindByID(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.signalRepo.FindByID(ctx, "kept")
	assert.NoError(t, err)
}

func TestRunIsMutuallyExclusive(t *testing.T) {
	db := testsupport.MustOpenStore(t)
	retry := testsupport.NoSleepRetry()
	log := logger.NewNop()
	intakeRepo := repository.NewIntakeRepository(db.DB, retry)

	collector := &blockingCollector{hold: 50 * time.Millisecond}
	svc := NewPipelineService(
		config.Pipeline{DefaultSectors: []string{"CRYPTO"}},
		collector,
		NewReconcilerService(intakeRepo, log),
		&failingAnalyzer{},
		intakeRepo,
		repository.NewSignalRepository(db.DB, retry),
		repository.NewPipelineRunRepository(db.DB, retry),
		log,
		WithClock(fixedClock),
		WithFileLock(t.TempDir()+"/pipeline.lock"),
	)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Run(context.Background(), dto.RunRequest{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, collector.maxActive.Load())
	assert.Equal(t, StateIdle, svc.State())
}

func TestRunGivesUpWaitingWhenContextEnds(t *testing.T) {
	db := testsupport.MustOpenStore(t)
	retry := testsupport.NoSleepRetry()
	log := logger.NewNop()
	intakeRepo := repository.NewIntakeRepository(db.DB, retry)

	collector := &blockingCollector{hold: 200 * time.Millisecond}
	svc := NewPipelineService(
		config.Pipeline{DefaultSectors: []string{"CRYPTO"}},
		collector,
		NewReconcilerService(intakeRepo, log),
		&failingAnalyzer{},
		intakeRepo,
		repository.NewSignalRepository(db.DB, retry),
		repository.NewPipelineRunRepository(db.DB, retry),
		log,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(context.Background(), dto.RunRequest{})
	}()
	require.Eventually(t, func() bool { return collector.active.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Run(ctx, dto.RunRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-done
}
