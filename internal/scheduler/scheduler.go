// Package scheduler keeps the current month's billing cycles fresh by
// regenerating them on an interval, so dashboards stay close to live
// order data without manual regeneration.
package scheduler

import (
	"context"
	"time"

	billingdomain "github.com/smallbiznis/opsdesk/internal/billing/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultRunInterval = time.Hour

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	BillingSvc billingdomain.Service
}

type Scheduler struct {
	log        *zap.Logger
	clock      clock.Clock
	billingSvc billingdomain.Service
	interval   time.Duration
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		clock:      p.Clock,
		billingSvc: p.BillingSvc,
		interval:   defaultRunInterval,
	}
}

// SetInterval overrides the run interval. Non-positive values are ignored.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval > 0 {
		s.interval = interval
	}
}

// RunOnce regenerates the billing cycles for the month the clock says it
// is right now.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()
	result, err := s.billingSvc.GenerateMonthlyBills(ctx, int(now.Month()), now.Year())
	if err != nil {
		return err
	}
	s.log.Debug("billing cycles refreshed",
		zap.Int("month", result.Month),
		zap.Int("year", result.Year),
		zap.Int("cycles", result.CyclesUpserted),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
