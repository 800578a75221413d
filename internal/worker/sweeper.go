package worker

import (
	"context"
	"log/slog"
	"time"

	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/usecase/shared"
)

// Sweeper releases lapsed holds across all events on a fixed interval.
// Readers already treat a lapsed hold as available, so the sweep only
// reclaims rows; nothing waits on it for correctness.
type Sweeper struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	interval time.Duration
}

func NewSweeper(uow shared.UnitOfWork, clk clock.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{
		uow:      uow,
		clock:    clk,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	var released int64
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		released, err = tx.Inventory().SweepExpired(ctx, s.clock.Now())
		return err
	})
	if err != nil {
		slog.Error("hold sweep failed", "error", err.Error())
		return
	}
	if released > 0 {
		slog.Info("released expired holds", "count", released)
	}
}
