package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/infra/metrics"
)

// Sweeper is the slice of the voucher engine the worker needs.
type Sweeper interface {
	SweepExpirations(ctx context.Context, now time.Time) (int, error)
}

// ExpiryWorker periodically flips timed-out Active vouchers to Expired.
// It is the only caller of SweepExpirations in the running service; user
// actions never trigger expiry directly.
type ExpiryWorker struct {
	interval time.Duration
	engine   Sweeper
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, engine Sweeper, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	wLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{interval: interval, engine: engine, log: &wLog}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.engine.SweepExpirations(ctx, time.Now())
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
			}
			if n > 0 {
				metrics.IncVouchersExpired(n)
				w.log.Info().Int("count", n).Msg("vouchers expired")
			}
		}
	}
}
