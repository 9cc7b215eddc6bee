package service

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang-news-signal/internal/entity"
	"golang-news-signal/internal/pipeline/config"
	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/fingerprint"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
)

const (
	trustOfficial = 1.0
	trustMedia    = 0.8
	trustDefault  = 0.6
)

// TrustPolicy assigns static credibility weights by source domain.
type TrustPolicy struct {
	official []string
	media    []string
	test     map[string]bool
}

// NewTrustPolicy builds a policy from the configured domain lists.
func NewTrustPolicy(cfg config.Trust) TrustPolicy {
	p := TrustPolicy{test: map[string]bool{}}
	for _, d := range cfg.OfficialDomains {
		p.official = append(p.official, strings.ToLower(strings.TrimSpace(d)))
	}
	for _, d := range cfg.MediaDomains {
		p.media = append(p.media, strings.ToLower(strings.TrimSpace(d)))
	}
	for _, d := range cfg.TestDomains {
		p.test[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return p
}

// Score returns 1.0 for official sources, 0.8 for major media and 0.6 otherwise.
func (p TrustPolicy) Score(domain string) float64 {
	switch {
	case matchesDomain(domain, p.official):
		return trustOfficial
	case matchesDomain(domain, p.media):
		return trustMedia
	}
	return trustDefault
}

// IsTest reports whether domain is a known test or loopback source.
func (p TrustPolicy) IsTest(domain string) bool {
	return p.test[domain]
}

func matchesDomain(domain string, list []string) bool {
	for _, d := range list {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// SourceDomain returns the lower-case host of link without a leading "www.".
func SourceDomain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

var titleFolder = cases.Lower(language.Und)

// NormalizeTitle folds case and compatibility forms and strips punctuation.
func NormalizeTitle(title string) string {
	folded := titleFolder.String(norm.NFKC.String(title))
	var sb strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// BuildSignal assembles the persisted record for item from its consensus.
// The signal reuses the intake id so an analyzed item never shows up as an orphan again.
func BuildSignal(item entity.IntakeItem, c dto.Consensus, results []dto.ProviderResult, trust TrustPolicy, now time.Time) *entity.Signal {
	domain := SourceDomain(item.Link)

	providers := make([]string, 0, len(results))
	for _, r := range results {
		providers = append(providers, r.Provider)
	}

	dump, err := json.Marshal(results)
	if err != nil {
		dump = []byte("[]")
	}

	return &entity.Signal{
		ID:              item.ID,
		PublishedAt:     item.ObservedAt.UTC().Truncate(time.Second),
		IngestedAt:      now.UTC().Truncate(time.Second),
		Sector:          strings.ToUpper(item.Sector),
		SourceDomain:    domain,
		URLHash:         fingerprint.URL(item.Link),
		URL:             item.Link,
		Title:           item.Title,
		TitleNormalized: NormalizeTitle(item.Title),
		TranslatedTitle: c.TranslatedTitle,
		BodyHash:        fingerprint.Body(c.Summary),
		Label:           c.Label,
		Region:          c.Region,
		Tickers:         entity.TickerSet(c.Tickers),
		Impact:          c.Impact,
		Confidence:      c.Confidence,
		Sentiment:       c.Sentiment,
		TrustScore:      trust.Score(domain),
		IsTestSource:    trust.IsTest(domain),
		Providers:       strings.Join(providers, ","),
		Summary:         c.Summary,
		What:            c.What,
		WhyMatters:      c.WhyMatters,
		ActionWindow:    c.ActionWindow,
		Analysis:        c.Analysis,
		LatencyClass:    common.LatencyFast,
		RawProviderDump: datatypes.JSON(dump),
	}
}
