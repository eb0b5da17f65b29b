package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch participant open interest from NSE",
	Long: `Downloads the participant-wise open interest archives for a date
range, computes day-over-day changes and stores the flow points.

Holidays and unpublished dates are skipped.

Example:
  go run ./cmd/fiipulse collect
  go run ./cmd/fiipulse collect --from 2026-08-01 --to 2026-08-28`,
	RunE: runCollect,
}

var (
	collectFrom string
	collectTo   string
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectFrom, "from", "", "start date (YYYY-MM-DD, default today)")
	collectCmd.Flags().StringVar(&collectTo, "to", "", "end date (YYYY-MM-DD, default today)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	from, to := today, today
	if collectFrom != "" {
		if from, err = time.Parse("2006-01-02", collectFrom); err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if collectTo != "" {
		if to, err = time.Parse("2006-01-02", collectTo); err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("--to must not precede --from")
	}

	saved, err := d.pipeline.Collect(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	fmt.Printf("Saved %d flow points for %s .. %s\n",
		saved, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return nil
}
