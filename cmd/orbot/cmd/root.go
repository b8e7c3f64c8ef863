package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orbot",
	Short: "An opening range breakout trading engine with simulated execution",
	Long: `Orbot is an intraday opening range breakout trading engine written in Go.

It provides tools for:
  - Running the breakout strategy over recorded bar data
  - Simulating a synthetic trading day end to end
  - Serving a live engine behind an HTTP control surface
  - Risk-based position sizing with daily circuit breakers
  - Trade journaling to CSV or SQLite`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
