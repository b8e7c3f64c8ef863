package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbot/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for the engine.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  orbot config init --output my-config.yaml
  orbot config validate --file my-config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "config.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  orbot serve --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Symbol: %s ($%.2f/point, balance $%.2f)\n",
		cfg.Trading.Symbol, cfg.Trading.PointValue, cfg.Trading.InitialBalance)
	fmt.Printf("  Window: %s-%s %s (opening range %d min)\n",
		cfg.Strategy.WindowStart, cfg.Strategy.WindowEnd, cfg.Trading.Timezone,
		cfg.Strategy.OpeningRangeMinutes)
	fmt.Printf("  Risk: %.1f%% per trade, max loss $%.2f, max trades %d\n",
		cfg.Strategy.RiskPercent*100, cfg.Risk.MaxDailyLoss, cfg.Risk.MaxDailyTrades)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
