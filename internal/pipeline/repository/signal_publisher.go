package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-news-signal/internal/entity"

	"github.com/redis/go-redis/v9"
)

// SignalPublisher announces newly persisted signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, signal *entity.Signal) error
}

// NewRedisSignalPublisher publishes to a capped redis stream.
func NewRedisSignalPublisher(client *redis.Client, stream string, maxLen int64) SignalPublisher {
	return &redisSignalPublisher{client: client, stream: stream, maxLen: maxLen}
}

type redisSignalPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func (p *redisSignalPublisher) Publish(ctx context.Context, signal *entity.Signal) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":           signal.ID,
			"sector":       signal.Sector,
			"label":        signal.Label,
			"impact":       signal.Impact,
			"confidence":   signal.Confidence,
			"sentiment":    signal.Sentiment,
			"tickers":      strings.Join(signal.Tickers, ","),
			"published_at": signal.PublishedAt.Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish signal %s: %w", signal.ID, err)
	}
	return nil
}

// NewNoopSignalPublisher returns a publisher that drops everything.
func NewNoopSignalPublisher() SignalPublisher {
	return noopSignalPublisher{}
}

type noopSignalPublisher struct{}

func (noopSignalPublisher) Publish(context.Context, *entity.Signal) error { return nil }
