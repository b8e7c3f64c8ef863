package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"orbot/config"
	"orbot/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine behind the HTTP control surface",
	Long: `Start the engine and expose it over HTTP.

The engine starts armed; bars are injected through POST /api/bars, and
status, statistics, trade history, and Prometheus metrics are served
alongside. A websocket status stream is available at /api/stream.

Example:
  orbot serve --config config.yaml --addr :8080`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveAddr       string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server.Addr, b, log.Named("http"))
	err = srv.Run(ctx)

	// The engine handle outlives the server: force-close any open position
	// before the process exits.
	b.Stop(ctx)
	return err
}
