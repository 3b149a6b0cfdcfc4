package booking

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically cancels pending bookings whose date has passed.
type Sweeper struct {
	service  Service
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewSweeper(service Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		timeout:  20 * time.Second,
		logger:   logger,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pending sweeper stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce keeps sweeping batches until a batch comes back short.
func (w *Sweeper) RunOnce(ctx context.Context) int {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	total := 0
	for {
		n, err := w.service.ExpireStalePending(runCtx)
		total += n
		if err != nil {
			w.logger.Error("pending sweep failed", zap.Int("expired", total), zap.Error(err))
			return total
		}
		if n < expireBatchSize {
			break
		}
	}

	if total > 0 {
		w.logger.Info("pending sweep complete",
			zap.Int("expired", total),
			zap.Duration("took", time.Since(start)),
		)
	}
	return total
}
