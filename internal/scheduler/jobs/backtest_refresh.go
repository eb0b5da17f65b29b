package jobs

import (
	"context"
	"fmt"

	"github.com/dkrao/fiipulse/internal/pipeline"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// BacktestRefreshJob recomputes the accuracy report nightly so the cached
// copy served by the API stays current.
type BacktestRefreshJob struct {
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
	lookback int
}

// NewBacktestRefreshJob creates the backtest refresh job.
func NewBacktestRefreshJob(p *pipeline.Pipeline, lookback int, log *logger.Logger) *BacktestRefreshJob {
	return &BacktestRefreshJob{pipeline: p, logger: log, lookback: lookback}
}

// Name returns the job name.
func (j *BacktestRefreshJob) Name() string {
	return "backtest_refresh"
}

// Schedule returns the cron schedule: weekdays at 20:00, after the daily
// snapshot job has run.
func (j *BacktestRefreshJob) Schedule() string {
	return "0 0 20 * * 1-5"
}

// Run recomputes and caches the backtest report.
func (j *BacktestRefreshJob) Run(ctx context.Context) error {
	report, err := j.pipeline.RefreshBacktest(ctx, j.lookback)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"scored_days": report.ScoredDays,
		"thresholds":  len(report.Results),
	}).Info("Backtest report refreshed")
	return nil
}
