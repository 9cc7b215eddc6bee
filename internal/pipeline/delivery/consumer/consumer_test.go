package consumer

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignalEvent(t *testing.T) {
	published := time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)
	event, err := ParseSignalEvent(redis.XMessage{
		ID: "1792407600000-0",
		Values: map[string]interface{}{
			"id":           "abc",
			"sector":       "CRYPTO",
			"label":        "regulatory",
			"impact":       "60",
			"confidence":   "70",
			"sentiment":    "-1",
			"tickers":      "BTC,ETH",
			"published_at": "1792407600",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", event.ID)
	assert.Equal(t, 60, event.Impact)
	assert.Equal(t, -1, event.Sentiment)
	assert.Equal(t, []string{"BTC", "ETH"}, event.Tickers)
	assert.True(t, event.PublishedAt.Equal(published))
}

func TestParseSignalEventRejectsMalformed(t *testing.T) {
	_, err := ParseSignalEvent(redis.XMessage{ID: "1-0", Values: map[string]interface{}{"sector": "CRYPTO"}})
	assert.Error(t, err)

	_, err = ParseSignalEvent(redis.XMessage{ID: "1-0", Values: map[string]interface{}{"id": "abc", "impact": "high"}})
	assert.Error(t, err)
}
