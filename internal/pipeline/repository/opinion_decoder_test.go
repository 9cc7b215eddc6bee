package repository_test

import (
	"strings"
	"testing"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/repository"

	"github.com/stretchr/testify/assert"
)

func TestDecodeOpinionStrict(t *testing.T) {
	raw := "```json\n" + `{
		"title_ru": "ФРС повышает ставки",
		"summary": "The Fed raised rates by 25 bps.",
		"label": "macro",
		"impact": 80,
		"confidence": "90",
		"sentiment": -3,
		"region": "us",
		"tickers": ["spy", " $TLT", "SPY"],
		"what": "Rate hike",
		"why_matters": ["Higher yields", "Pressure on equities"],
		"action_window": "1-3d",
		"analysis": "Long form text"
	}` + "\n```"

	op, tier := repository.DecodeOpinion(raw)

	assert.Equal(t, repository.TierStrict, tier)
	assert.Equal(t, "ФРС повышает ставки", op.TranslatedTitle)
	assert.Equal(t, "macro", op.Label)
	assert.Equal(t, 80, op.Impact)
	assert.Equal(t, 90, op.Confidence)
	assert.Equal(t, -1, op.Sentiment)
	assert.Equal(t, "US", op.Region)
	assert.Equal(t, []string{"SPY", "TLT"}, op.Tickers)
	assert.Equal(t, "Higher yields Pressure on equities", op.WhyMatters)
	assert.Equal(t, "1-3d", op.ActionWindow)
}

func TestDecodeOpinionFragment(t *testing.T) {
	raw := `Sure! Here is the analysis: {"summary": "ok", "label": "earnings", "impact": 140, "confidence": -5} Hope it helps.`

	op, tier := repository.DecodeOpinion(raw)

	assert.Equal(t, repository.TierFragment, tier)
	assert.Equal(t, "earnings", op.Label)
	assert.Equal(t, 100, op.Impact)
	assert.Equal(t, 0, op.Confidence)
}

func TestDecodeOpinionPlaceholder(t *testing.T) {
	raw := strings.Repeat("x", 300)

	op, tier := repository.DecodeOpinion(raw)

	assert.Equal(t, repository.TierPlaceholder, tier)
	assert.Len(t, op.Summary, 200)
	assert.Equal(t, dto.LabelOther, op.Label)
	assert.Equal(t, dto.DefaultImpact, op.Impact)
	assert.Equal(t, dto.DefaultConfidence, op.Confidence)
	assert.Equal(t, 0, op.Sentiment)
	assert.Equal(t, dto.RegionDefault, op.Region)
	assert.Equal(t, dto.PlaceholderWhat, op.What)
	assert.Equal(t, dto.PlaceholderWhyMatters, op.WhyMatters)
}

func TestDecodeOpinionNormalizesUnknownValues(t *testing.T) {
	op, tier := repository.DecodeOpinion(`{"label": "gossip", "region": "Mars", "action_window": "someday", "sentiment": "bullish", "tickers": "aapl, msft"}`)

	assert.Equal(t, repository.TierStrict, tier)
	assert.Equal(t, dto.LabelOther, op.Label)
	assert.Equal(t, dto.RegionDefault, op.Region)
	assert.Equal(t, dto.ActionWindowDefault, op.ActionWindow)
	assert.Equal(t, 1, op.Sentiment)
	assert.Equal(t, []string{"AAPL", "MSFT"}, op.Tickers)
	assert.Equal(t, dto.DefaultImpact, op.Impact)
}

func TestDecodeOpinionEmptyObjectUsesDefaults(t *testing.T) {
	op, tier := repository.DecodeOpinion("{}")

	assert.Equal(t, repository.TierStrict, tier)
	assert.Empty(t, op.Summary)
	assert.Equal(t, dto.DefaultImpact, op.Impact)
	assert.Equal(t, dto.DefaultConfidence, op.Confidence)
}
