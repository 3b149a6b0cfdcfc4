package event

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "gym:booking-events"

// StreamPublisher appends events to a Redis stream with XADD.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher returns a publisher writing to stream, trimmed to about maxLen entries.
// A maxLen of zero disables trimming.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *StreamPublisher) Publish(ctx context.Context, e Event) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":        string(e.Type),
			"booking_id":  e.BookingID,
			"trainer_id":  e.TrainerID,
			"slot_id":     e.SlotID,
			"date":        e.Date,
			"status":      e.Status,
			"prev_status": e.PrevStatus,
			"at":          e.At.UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
