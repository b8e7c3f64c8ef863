package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbot/config"
	"orbot/replay"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the strategy over recorded bars from a CSV file",
	Long: `Run the opening range breakout strategy over a CSV bar file.

The file holds one bar per row: time,open,high,low,close,volume.
Bars are fed in file order; day boundaries reset the strategy.

Example:
  orbot run --config config.yaml --file bars.csv`,
	RunE: runRun,
}

var (
	runConfigPath string
	runBarsPath   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runBarsPath, "file", "", "path to CSV bar file (required)")
	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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
	fed, err := replay.Run(ctx, runBarsPath, b, log.Named("replay"))
	b.Stop(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Replayed %d bars from %s\n", fed, runBarsPath)
	printStatistics(b)
	return nil
}
