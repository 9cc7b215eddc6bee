package service

import (
	"strings"
	"testing"

	"golang-news-signal/internal/pipeline/dto"

	"github.com/stretchr/testify/assert"
)

func opinion(label string, impact, confidence int) dto.ProviderOpinion {
	return dto.ProviderOpinion{
		Label:        label,
		Impact:       impact,
		Confidence:   confidence,
		Region:       "US",
		ActionWindow: ">1w",
		Tickers:      []string{},
	}
}

func TestReduceTakesLowerMedian(t *testing.T) {
	tests := []struct {
		name    string
		impacts []int
		want    int
	}{
		{"single", []int{42}, 42},
		{"pair picks lower", []int{80, 60}, 60},
		{"odd resists outlier", []int{10, 90, 20}, 20},
		{"even of four", []int{5, 100, 40, 30}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ops []dto.ProviderOpinion
			for _, i := range tt.impacts {
				ops = append(ops, opinion("macro", i, i))
			}
			c := Reduce(ops)
			assert.Equal(t, tt.want, c.Impact)
			assert.Equal(t, tt.want, c.Confidence)
		})
	}
}

func TestReduceMajorityVoteTieGoesToFirstSeen(t *testing.T) {
	c := Reduce([]dto.ProviderOpinion{opinion("regulatory", 80, 90), opinion("macro", 60, 70)})
	assert.Equal(t, "regulatory", c.Label)
	assert.Equal(t, 60, c.Impact)
	assert.Equal(t, 70, c.Confidence)

	c = Reduce([]dto.ProviderOpinion{opinion("regulatory", 1, 1), opinion("macro", 1, 1), opinion("macro", 1, 1)})
	assert.Equal(t, "macro", c.Label)
}

func TestReduceSentimentAndRegion(t *testing.T) {
	a := opinion("macro", 50, 50)
	a.Sentiment, a.Region = -1, "EU"
	b := opinion("macro", 50, 50)
	b.Sentiment, b.Region = 1, "US"
	d := opinion("macro", 50, 50)
	d.Sentiment, d.Region = 1, "EU"

	c := Reduce([]dto.ProviderOpinion{a, b, d})
	assert.Equal(t, 1, c.Sentiment)
	assert.Equal(t, "EU", c.Region)
}

func TestReduceTickersUnionCappedAtFive(t *testing.T) {
	a := opinion("macro", 50, 50)
	a.Tickers = []string{"btc", "ETH", "SOL"}
	b := opinion("macro", 50, 50)
	b.Tickers = []string{"ETH", "MSTR", "COIN", "HOOD", "SQ"}

	c := Reduce([]dto.ProviderOpinion{a, b})
	assert.Equal(t, []string{"BTC", "ETH", "SOL", "MSTR", "COIN"}, c.Tickers)
}

func TestReduceJoinsWhatAndWhy(t *testing.T) {
	a := opinion("macro", 50, 50)
	a.What, a.WhyMatters = "rate cut", "cheaper money"
	b := opinion("macro", 50, 50)
	b.What = "policy shift"
	d := opinion("macro", 50, 50)
	d.What = "third view"

	c := Reduce([]dto.ProviderOpinion{a, b, d})
	assert.Equal(t, "rate cut | policy shift", c.What)
	assert.Equal(t, "cheaper money", c.WhyMatters)
}

func TestReduceCleansSummary(t *testing.T) {
	a := opinion("macro", 50, 50)
	a.Summary = "Fed holds rates {\"impact\": 1}   steady"
	b := opinion("macro", 50, 50)
	b.Summary = strings.Repeat("x", 150)

	c := Reduce([]dto.ProviderOpinion{a, b})
	assert.Equal(t, "Fed holds rates steady | "+strings.Repeat("x", 100), c.Summary)
	assert.NotContains(t, c.Summary, "{")
}

func TestReduceEmptyIsPlaceholder(t *testing.T) {
	c := Reduce(nil)
	assert.Zero(t, c.Impact)
	assert.Zero(t, c.Confidence)
	assert.Equal(t, dto.LabelOther, c.Label)
	assert.Equal(t, dto.PlaceholderSummary, c.Summary)
	assert.Empty(t, c.Tickers)
}
