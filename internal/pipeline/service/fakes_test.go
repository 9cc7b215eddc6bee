package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeFeedRepository struct {
	mu      sync.Mutex
	entries map[string][]dto.FeedEntry
	errs    map[string]error
	calls   int
}

func (f *fakeFeedRepository) Fetch(_ context.Context, url string) ([]dto.FeedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.entries[url], nil
}

type fakeProvider struct {
	name    string
	opinion dto.ProviderOpinion
	err     error
	panics  bool
	calls   atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Analyze(_ context.Context, _ string) (*repository.ProviderReply, error) {
	p.calls.Add(1)
	if p.panics {
		panic("provider exploded")
	}
	op := p.opinion
	return &repository.ProviderReply{Opinion: &op, Raw: "{}"}, p.err
}

type failingAnalyzer struct {
	inner  AnalyzerService
	failID atomic.Value
}

func (a *failingAnalyzer) Analyze(ctx context.Context, item entity.IntakeItem) (*entity.Signal, error) {
	if id, _ := a.failID.Load().(string); id == item.ID {
		return nil, errors.New("analysis unavailable")
	}
	return a.inner.Analyze(ctx, item)
}

type blockingCollector struct {
	active    atomic.Int32
	maxActive atomic.Int32
	hold      time.Duration
}

func (c *blockingCollector) Collect(context.Context, []string) ([]entity.IntakeItem, error) {
	n := c.active.Add(1)
	for {
		m := c.maxActive.Load()
		if n <= m || c.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(c.hold)
	c.active.Add(-1)
	return nil, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingPublisher) Publish(_ context.Context, s *entity.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, s.ID)
	return nil
}
