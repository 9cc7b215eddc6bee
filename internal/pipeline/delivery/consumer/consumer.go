package consumer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const readBlock = 2 * time.Second

// SignalConsumer tails the persisted-signals stream.
type SignalConsumer struct {
	redisClient *redis.Client
	stream      string
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewSignalConsumer creates a new SignalConsumer.
func NewSignalConsumer(redisClient *redis.Client, stream string, log *logger.Logger) *SignalConsumer {
	return &SignalConsumer{
		redisClient: redisClient,
		stream:      stream,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start delivers every event added after the call to handle, until ctx ends or Stop is called.
func (c *SignalConsumer) Start(ctx context.Context, handle func(dto.SignalEvent)) {
	c.logger.Info("Signal consumer started", logger.StringField("stream", c.stream))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		lastID := "$"
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Signal consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Signal consumer stopping")
				return
			default:
				lastID = c.read(ctx, lastID, handle)
			}
		}
	})
}

func (c *SignalConsumer) read(ctx context.Context, lastID string, handle func(dto.SignalEvent)) string {
	streams, err := c.redisClient.XRead(ctx, &redis.XReadArgs{
		Streams: []string{c.stream, lastID},
		Count:   10,
		Block:   readBlock,
	}).Result()
	if err != nil {
		// Timeouts and shutdown are expected while idle.
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return lastID
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		time.Sleep(readBlock)
		return lastID
	}

	for _, s := range streams {
		for _, msg := range s.Messages {
			lastID = msg.ID
			event, err := ParseSignalEvent(msg)
			if err != nil {
				c.logger.Warn("Skipping malformed signal event", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
				continue
			}
			handle(event)
		}
	}
	return lastID
}

// Stop shuts the consumer down and waits for the read loop to exit.
func (c *SignalConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Signal consumer stopped")
}

// ParseSignalEvent decodes one stream message written by the signal publisher.
func ParseSignalEvent(msg redis.XMessage) (dto.SignalEvent, error) {
	event := dto.SignalEvent{StreamID: msg.ID}

	id, ok := msg.Values["id"].(string)
	if !ok || id == "" {
		return event, fmt.Errorf("field 'id' not found or not a string")
	}
	event.ID = id
	event.Sector, _ = msg.Values["sector"].(string)
	event.Label, _ = msg.Values["label"].(string)
	tickers, _ := msg.Values["tickers"].(string)
	event.Tickers = utils.SplitCSV(tickers)

	ints := map[string]*int{
		"impact":     &event.Impact,
		"confidence": &event.Confidence,
		"sentiment":  &event.Sentiment,
	}
	for key, dst := range ints {
		raw, _ := msg.Values[key].(string)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return event, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		*dst = n
	}

	if raw, _ := msg.Values["published_at"].(string); raw != "" {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return event, fmt.Errorf("field 'published_at' is not a unix time: %w", err)
		}
		event.PublishedAt = time.Unix(sec, 0).UTC()
	}
	return event, nil
}
