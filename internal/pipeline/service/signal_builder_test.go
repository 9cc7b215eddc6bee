package service

import (
	"encoding/json"
	"testing"
	"time"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/fingerprint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTrust = NewTrustPolicy(config.Trust{
	OfficialDomains: []string{"sec.gov", "ecb.europa.eu"},
	MediaDomains:    []string{"reuters.com"},
	TestDomains:     []string{"example.com", "127.0.0.1"},
})

func TestTrustPolicy(t *testing.T) {
	assert.Equal(t, 1.0, testTrust.Score("sec.gov"))
	assert.Equal(t, 1.0, testTrust.Score("ecb.europa.eu"))
	assert.Equal(t, 0.8, testTrust.Score("uk.reuters.com"))
	assert.Equal(t, 0.6, testTrust.Score("notreuters.com"))
	assert.True(t, testTrust.IsTest("example.com"))
	assert.False(t, testTrust.IsTest("sec.gov"))
}

func TestSourceDomain(t *testing.T) {
	assert.Equal(t, "reuters.com", SourceDomain("https://WWW.Reuters.com/markets/x"))
	assert.Equal(t, "127.0.0.1", SourceDomain("http://127.0.0.1:8080/a"))
	assert.Equal(t, "unknown", SourceDomain(""))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "sec approves bitcoinetf 2026", NormalizeTitle("  SEC Approves Bitcoin-ETF!! (２０２６) "))
}

func TestBuildSignal(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	item := entity.IntakeItem{
		ID:         fingerprint.Item("https://www.sec.gov/news/1", "SEC approves ETF", "crypto"),
		ObservedAt: now.Add(-time.Hour),
		Sector:     "crypto",
		Title:      "SEC approves ETF",
		Link:       "https://www.sec.gov/news/1",
	}
	c := Reduce([]dto.ProviderOpinion{opinion("regulatory", 80, 90)})
	results := []dto.ProviderResult{{Provider: "alpha"}, {Provider: "beta", Degraded: true, Error: "boom"}}

	s := BuildSignal(item, c, results, testTrust, now)
	assert.Equal(t, item.ID, s.ID)
	assert.Equal(t, "CRYPTO", s.Sector)
	assert.Equal(t, "sec.gov", s.SourceDomain)
	assert.Equal(t, 1.0, s.TrustScore)
	assert.False(t, s.IsTestSource)
	assert.Equal(t, "alpha,beta", s.Providers)
	assert.Equal(t, fingerprint.URL(item.Link), s.URLHash)
	assert.Equal(t, fingerprint.Body(c.Summary), s.BodyHash)
	assert.Equal(t, "sec approves etf", s.TitleNormalized)
	assert.True(t, s.PublishedAt.Equal(item.ObservedAt))
	assert.True(t, s.IngestedAt.Equal(now))

	var dump []dto.ProviderResult
	require.NoError(t, json.Unmarshal(s.RawProviderDump, &dump))
	assert.Len(t, dump, 2)
	assert.Equal(t, "boom", dump[1].Error)
}

func TestMergeCandidatesKeepsFirstOccurrence(t *testing.T) {
	a := entity.IntakeItem{ID: "a", Title: "collected"}
	b := entity.IntakeItem{ID: "b"}
	aOrphan := entity.IntakeItem{ID: "a", Title: "orphan"}
	c := entity.IntakeItem{ID: "c"}

	merged := MergeCandidates([]entity.IntakeItem{a, b}, []entity.IntakeItem{aOrphan, c})
	require.Len(t, merged, 3)
	assert.Equal(t, "collected", merged[0].Title)
	assert.Equal(t, []string{"a", "b", "c"}, []string{merged[0].ID, merged[1].ID, merged[2].ID})
}
