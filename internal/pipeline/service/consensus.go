package service

import (
	"regexp"
	"sort"
	"strings"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/utils"
)

const (
	maxConsensusTickers  = 5
	summaryPartRunes     = 100
	summaryTotalRunes    = 300
	consensusPartsJoiner = " | "
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json.*?```")
	inlineJSONRe = regexp.MustCompile(`\{.*?\}`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// Reduce merges provider opinions into one consensus.
//
// impact and confidence take the lower median (index (n-1)/2 of the sorted values) so one
// outlier provider cannot drag the result. label, region, sentiment and action window take
// the most frequent value, ties going to whichever appeared first. An empty input yields a
// zero-impact, zero-confidence placeholder which callers must read as "no usable analysis".
func Reduce(opinions []dto.ProviderOpinion) dto.Consensus {
	if len(opinions) == 0 {
		return dto.Consensus{
			Summary:      dto.PlaceholderSummary,
			Label:        dto.LabelOther,
			Region:       dto.RegionDefault,
			Tickers:      []string{},
			What:         dto.PlaceholderWhat,
			WhyMatters:   dto.PlaceholderWhyMatters,
			ActionWindow: dto.ActionWindowDefault,
		}
	}

	var (
		impacts, confidences, sentiments []int
		labels, regions, windows         []string
		whats, whys, summaries           []string
		tickers                          = []string{}
		seenTicker                       = map[string]bool{}
		c                                dto.Consensus
	)

	for _, op := range opinions {
		impacts = append(impacts, op.Impact)
		confidences = append(confidences, op.Confidence)
		sentiments = append(sentiments, op.Sentiment)
		labels = appendNonEmpty(labels, op.Label)
		regions = appendNonEmpty(regions, op.Region)
		windows = appendNonEmpty(windows, op.ActionWindow)
		whats = appendNonEmpty(whats, op.What)
		whys = appendNonEmpty(whys, op.WhyMatters)
		if s := strings.TrimSpace(op.Summary); s != "" {
			summaries = append(summaries, utils.Truncate(s, summaryPartRunes))
		}

		for _, t := range op.Tickers {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" || seenTicker[t] {
				continue
			}
			seenTicker[t] = true
			tickers = append(tickers, t)
		}

		if c.TranslatedTitle == "" {
			c.TranslatedTitle = strings.TrimSpace(op.TranslatedTitle)
		}
		if c.Analysis == "" {
			c.Analysis = strings.TrimSpace(op.Analysis)
		}
	}

	if len(tickers) > maxConsensusTickers {
		tickers = tickers[:maxConsensusTickers]
	}

	c.Impact = lowerMedian(impacts)
	c.Confidence = lowerMedian(confidences)
	c.Sentiment = majority(sentiments, 0)
	c.Label = majority(labels, dto.LabelOther)
	c.Region = majority(regions, dto.RegionDefault)
	c.ActionWindow = majority(windows, dto.ActionWindowDefault)
	c.Tickers = tickers
	c.What = joinFirstTwo(whats, dto.PlaceholderWhat)
	c.WhyMatters = joinFirstTwo(whys, dto.PlaceholderWhyMatters)
	c.Summary = cleanSummary(strings.Join(summaries, consensusPartsJoiner))
	return c
}

func lowerMedian(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return sorted[(len(sorted)-1)/2]
}

func majority[T comparable](values []T, def T) T {
	if len(values) == 0 {
		return def
	}
	counts := make(map[T]int, len(values))
	best, bestCount := values[0], 0
	for _, v := range values {
		counts[v]++
	}
	// values is walked in input order, so on equal counts the first seen wins.
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func appendNonEmpty(list []string, v string) []string {
	if v = strings.TrimSpace(v); v != "" {
		return append(list, v)
	}
	return list
}

func joinFirstTwo(parts []string, placeholder string) string {
	if len(parts) == 0 {
		return placeholder
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, consensusPartsJoiner)
}

func cleanSummary(s string) string {
	s = utils.Truncate(s, summaryTotalRunes)
	s = fencedJSONRe.ReplaceAllString(s, "")
	s = inlineJSONRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
