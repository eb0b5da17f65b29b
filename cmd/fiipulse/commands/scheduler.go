package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrao/fiipulse/internal/scheduler"
	"github.com/dkrao/fiipulse/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
  daily_snapshot    - weekdays 19:00, collect + evaluate
  backtest_refresh  - weekdays 20:00, recompute accuracy report

Example:
  go run ./cmd/fiipulse scheduler start
  go run ./cmd/fiipulse scheduler run daily_snapshot`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *deps, error) {
	d, err := buildDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log)

	if err := sched.AddJob(jobs.NewDailySnapshotJob(d.pipeline, d.log)); err != nil {
		d.close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewBacktestRefreshJob(d.pipeline, d.cfg.Engine.LookbackDays, d.log)); err != nil {
		d.close()
		return nil, nil, err
	}

	return sched, d, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	fmt.Printf("Job %s triggered\n", jobName)

	// RunJob is asynchronous; wait for the result to land in history.
	for {
		time.Sleep(500 * time.Millisecond)

		history, err := sched.History(jobName)
		if err != nil {
			return err
		}
		if results := history.LatestResults(1); len(results) > 0 {
			r := results[0]
			if r.Success {
				fmt.Printf("Job %s completed in %s\n", jobName, r.Duration)
				return nil
			}
			return fmt.Errorf("job %s failed: %s", jobName, r.Error)
		}
	}
}
