package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkrao/fiipulse/internal/backtest"
	"github.com/dkrao/fiipulse/internal/contracts"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Score label accuracy against next-day index moves",
	Long: `Labels the recent trading dates and scores each participant's
call/put expectation against the realized next-day index return, at
each configured movement threshold.

Example:
  go run ./cmd/fiipulse backtest
  go run ./cmd/fiipulse backtest --lookback 90 --refresh`,
	RunE: runBacktest,
}

var (
	backtestLookback int
	backtestRefresh  bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().IntVar(&backtestLookback, "lookback", 0, "trading days to score (default from config)")
	backtestCmd.Flags().BoolVar(&backtestRefresh, "refresh", false, "recompute even if a cached report exists")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	var report *backtest.Report
	if backtestRefresh {
		report, err = d.pipeline.RefreshBacktest(cmd.Context(), backtestLookback)
	} else {
		report, err = d.pipeline.Backtest(cmd.Context(), backtestLookback)
	}
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printBacktestReport(report)
	return nil
}

func printBacktestReport(report *backtest.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════")
	fmt.Printf("  Backtest %s ~ %s (%d scored days)\n",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"), report.ScoredDays)

	for _, row := range report.Results {
		fmt.Println("───────────────────────────────────────────────────────────────────")
		fmt.Printf("  Threshold %.1f%%\n", row.Threshold)
		fmt.Printf("  %-8s %8s %8s %12s %10s\n", "WHO", "CORRECT", "WRONG", "INDECISIVE", "ACCURACY")
		for _, inst := range contracts.ScoredInstitutions {
			counts := row.Counts[inst]
			if counts == nil {
				continue
			}
			fmt.Printf("  %-8s %8d %8d %12d %9.1f%%\n",
				inst, counts.Correct, counts.Wrong, counts.Indecisive, counts.PercentCorrect())
		}
	}
	fmt.Println("═══════════════════════════════════════════════════════════════════")
}
