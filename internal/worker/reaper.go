package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/opdbook/booking-api/internal/service/booking"
)

// Reaper resolves payment attempts the patient walked away from: any order
// past its verification deadline is failed so the session is not stuck in a
// half-paid limbo forever.
type Reaper struct {
	bookings *booking.Service
	interval time.Duration
	logger   *zerolog.Logger
}

func NewReaper(bookings *booking.Service, interval time.Duration, logger *zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Reaper{bookings: bookings, interval: interval, logger: logger}
}

// Run sweeps on a ticker until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("Payment reaper started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Payment reaper stopping")
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	failed, err := r.bookings.FailOverdueVerifications(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Payment reaper sweep failed")
		return
	}
	if failed > 0 {
		r.logger.Warn().Int("count", failed).Msg("Timed out overdue payment attempts")
	}
}
