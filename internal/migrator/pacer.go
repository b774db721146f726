package migrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/alan/trac2github/cmd"
)

// Pacer spaces out GitHub writes so bulk issue creation stays below the secondary rate limits
type Pacer struct {
	Pause          time.Duration
	LongPause      time.Duration
	LongPauseEvery int

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer from the configured pacing
func NewPacer(p cmd.Pacing) *Pacer {
	return &Pacer{
		Pause:          p.Pause,
		LongPause:      p.LongPause,
		LongPauseEvery: p.LongPauseEvery,
		sleep:          sleepContext,
	}
}

// AfterTicket waits after a ticket was written. Tickets whose ID is a multiple of
// LongPauseEvery get the long pause on top. A nil Pacer never waits.
func (p *Pacer) AfterTicket(ctx context.Context, ticketID int) error {
	if p == nil {
		return nil
	}

	if err := p.wait(ctx, p.Pause); err != nil {
		return err
	}

	if p.LongPause > 0 && p.LongPauseEvery > 0 && ticketID%p.LongPauseEvery == 0 {
		slog.Info("Sleeping before next ticket", "duration", p.LongPause, "ticket", ticketID)
		return p.wait(ctx, p.LongPause)
	}
	return nil
}

func (p *Pacer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
