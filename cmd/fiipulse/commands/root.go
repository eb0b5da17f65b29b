package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fiipulse",
	Short: "FII positioning strength pipeline",
	Long: `fiipulse - participant positioning strength for NSE index derivatives

Classifies daily open interest and day-over-day change for FII, Pro and
Client participants into strength labels, derives a Net Options signal
from the call and put legs, and scores the labels against next-day index
moves.

Usage:
  go run ./cmd/fiipulse [command]

Examples:
  go run ./cmd/fiipulse collect --from 2026-08-01 --to 2026-08-28
  go run ./cmd/fiipulse strength
  go run ./cmd/fiipulse backtest --lookback 60
  go run ./cmd/fiipulse api
  go run ./cmd/fiipulse scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
