package event

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the application log. It is used when no
// Redis is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.logger.Info("booking event",
		zap.String("type", string(e.Type)),
		zap.String("booking_id", e.BookingID),
		zap.String("trainer_id", e.TrainerID),
		zap.String("slot_id", e.SlotID),
		zap.String("date", e.Date),
		zap.String("status", e.Status),
		zap.String("prev_status", e.PrevStatus),
		zap.Time("at", e.At),
	)
	return nil
}
