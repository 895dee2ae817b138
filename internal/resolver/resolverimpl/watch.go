package resolverimpl

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleWatch re-resolves the configured urls on a randomized
// interval. Archive dedup keeps repeat runs idempotent.
func (r *ResolverImpl) ScheduleWatch(ctx context.Context) error {
	minutes := r.Config.Resolver.WatchMinutes
	if minutes <= 0 {
		r.Logger.Info("Watch mode disabled")
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		r.Logger.Error("Error creating scheduler", "error", err)
		return err
	}

	interval := time.Duration(minutes) * time.Minute
	_, err = s.NewJob(
		gocron.DurationRandomJob(interval, interval+5*time.Minute),
		gocron.NewTask(func() {
			r.ResolveAll(ctx, r.Config.Resolver.URLs)
		}),
	)
	if err != nil {
		r.Logger.Error("Error scheduling watch job", "error", err)
		return err
	}

	s.Start()
	r.Logger.Info("Watch mode started", "interval_minutes", minutes)

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			r.Logger.Error("Error shutting down scheduler", "error", err)
		}
	}()

	return nil
}
