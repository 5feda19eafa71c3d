package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/scheduler"
)

// Job IDs.
const (
	JobGenerateDailyTip = "generate_daily_tip"
	JobExpireLicenses   = "expire_licenses"
)

// GetScheduler returns the scheduler instance for API access.
func (e *Engine) GetScheduler() *scheduler.Scheduler {
	return e.scheduler
}

// RunJob triggers a scheduled job immediately. The job runs in the background.
func (e *Engine) RunJob(id string) error {
	return e.scheduler.RunJobNow(id)
}

// Run starts the engine and all its background jobs.
func (e *Engine) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	e.scheduler.Start()

	<-ctx.Done()
	return nil
}

// Close stops the engine and cleans up resources.
func (e *Engine) Close() error {
	err := e.scheduler.Stop()
	e.wg.Wait()
	return err
}

// setupJobs configures all scheduled jobs.
func (e *Engine) setupJobs() error {
	if e.cfg.Generator != nil && e.cfg.Generator.Schedule != "" {
		if err := e.scheduler.AddSingletonJob(
			JobGenerateDailyTip,
			"Daily Tip",
			"Generates the tip of the day",
			e.cfg.Generator.Schedule,
			func(ctx context.Context) error {
				return e.GenerateDailyTip(ctx).Err
			},
		); err != nil {
			return fmt.Errorf("failed to add tip generation job: %w", err)
		}
	}

	// revoking is idempotent, overlapping runs are harmless
	if err := e.scheduler.AddJob(
		JobExpireLicenses,
		"Expire Licenses",
		"Revokes licenses whose period has ended",
		"0 * * * *", // hourly
		e.ExpireLicenses,
	); err != nil {
		return fmt.Errorf("failed to add license expiry job: %w", err)
	}

	log.Info("Scheduled jobs configured successfully")
	return nil
}
