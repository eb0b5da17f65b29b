// Package jobs implements the scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dkrao/fiipulse/internal/pipeline"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// DailySnapshotJob collects the day's participant open interest after NSE
// publishes the archive, then evaluates and caches the day's labels.
type DailySnapshotJob struct {
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
	schedule string
}

// NewDailySnapshotJob creates the daily snapshot job.
func NewDailySnapshotJob(p *pipeline.Pipeline, log *logger.Logger) *DailySnapshotJob {
	return &DailySnapshotJob{
		pipeline: p,
		logger:   log,
		// Weekdays at 19:00 IST; the participant file lands in the evening.
		schedule: "0 0 19 * * 1-5",
	}
}

// Name returns the job name.
func (j *DailySnapshotJob) Name() string {
	return "daily_snapshot"
}

// Schedule returns the cron schedule.
func (j *DailySnapshotJob) Schedule() string {
	return j.schedule
}

// Run collects today's data and evaluates the latest labels. Collection
// also backfills the last few days in case a publication was missed.
func (j *DailySnapshotJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -4)

	saved, err := j.pipeline.Collect(ctx, from, today)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if saved == 0 {
		j.logger.Info("No new participant data, skipping evaluation")
		return nil
	}

	if _, err := j.pipeline.EvaluateLatest(ctx); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}
