package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"orbot/config"
	"orbot/simulate"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Simulate a synthetic trading day through the full engine",
	Long: `Generate one synthetic session and drive it through the engine:
an opening range, a breakout with a volume spike, then a drift toward
the bracket target.

Runs with default settings unless a config file is given.

Example:
  orbot demo --price 5000 --seed 42`,
	RunE: runDemo,
}

var (
	demoConfigPath string
	demoPrice      float64
	demoSeed       int64
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVarP(&demoConfigPath, "config", "f", "", "path to config file (optional)")
	demoCmd.Flags().Float64Var(&demoPrice, "price", 5000.0, "session start price")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", time.Now().UnixNano(), "random seed")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if demoConfigPath != "" {
		loaded, err := config.LoadFromFile(demoConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	b, j, err := buildBot(cfg, log)
	if err != nil {
		return err
	}
	defer j.Close()

	if err := b.Start(); err != nil {
		return err
	}

	ctx := cmd.Context()
	start, err := config.ParseClock(cfg.Strategy.WindowStart)
	if err != nil {
		return err
	}
	open := start.On(time.Now().In(cfg.Location()))

	sim := simulate.New(b, demoPrice, demoSeed, log.Named("simulate"))
	err = sim.RunFullDay(ctx, open)
	b.Stop(ctx)
	if err != nil {
		return err
	}

	printStatistics(b)
	return nil
}
