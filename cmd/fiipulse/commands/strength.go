package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// strengthCmd represents the strength command
var strengthCmd = &cobra.Command{
	Use:   "strength",
	Short: "Show or compute strength labels",
	Long: `Shows the strength labels for a trading date. Without --date the
latest stored labels are shown; with --evaluate the latest collected
flow data is (re)labelled first.

Example:
  go run ./cmd/fiipulse strength
  go run ./cmd/fiipulse strength --date 2026-08-28
  go run ./cmd/fiipulse strength --evaluate`,
	RunE: runStrength,
}

var (
	strengthDate     string
	strengthEvaluate bool
)

func init() {
	rootCmd.AddCommand(strengthCmd)

	strengthCmd.Flags().StringVar(&strengthDate, "date", "", "trading date (YYYY-MM-DD)")
	strengthCmd.Flags().BoolVar(&strengthEvaluate, "evaluate", false, "evaluate latest flow data first")
}

func runStrength(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()

	var results []contracts.CompositionResult
	switch {
	case strengthEvaluate:
		results, err = d.pipeline.EvaluateLatest(ctx)
	case strengthDate != "":
		var date time.Time
		if date, err = time.Parse("2006-01-02", strengthDate); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		results, err = d.pipeline.StrengthByDate(ctx, date)
	default:
		results, err = d.pipeline.LatestStrength(ctx)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No strength labels found. Run collect first, then strength --evaluate.")
		return nil
	}

	printStrengthTable(results)
	return nil
}

func printStrengthTable(results []contracts.CompositionResult) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════════")
	fmt.Printf("  Strength labels for %s\n", results[0].Date.Format("2006-01-02"))
	fmt.Println("───────────────────────────────────────────────────────────────────")
	fmt.Printf("  %-8s %-14s %14s %12s  %s\n", "WHO", "SEGMENT", "NET OI", "CHANGE", "SIGNAL")
	fmt.Println("───────────────────────────────────────────────────────────────────")

	for _, r := range results {
		fmt.Printf("  %-8s %-14s %14.0f %12.0f  %s\n",
			r.Institution, r.Segment, r.NetOI, r.Change, r.FinalString())
	}
	fmt.Println("═══════════════════════════════════════════════════════════════════")
}
