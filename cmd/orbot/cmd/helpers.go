package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"orbot/bot"
	"orbot/config"
	"orbot/journal"
	"orbot/sim"
)

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.BalanceFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

// buildBot wires the journal, the simulated execution engine, and the
// strategy engine from a loaded config. The caller owns closing the journal.
func buildBot(cfg *config.Config, log *zap.Logger) (*bot.Bot, journal.Journal, error) {
	j, err := newJournal(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create journal: %w", err)
	}

	engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, j, log.Named("sim"))
	b, err := bot.New(cfg, engine, log.Named("bot"))
	if err != nil {
		j.Close()
		return nil, nil, err
	}
	return b, j, nil
}

func printStatistics(b *bot.Bot) {
	stats := b.Statistics()
	fmt.Println("\nFinal statistics:")
	fmt.Printf("  Total trades: %d\n", stats.TotalTrades)
	fmt.Printf("  Winners: %d  Losers: %d  Win rate: %.1f%%\n",
		stats.WinningTrades, stats.LosingTrades, stats.WinRate)
	fmt.Printf("  Total P&L: $%.2f\n", stats.TotalPL)
	fmt.Printf("  Average win: $%.2f  Average loss: $%.2f\n",
		stats.AverageWin, stats.AverageLoss)

	trades := b.TradeHistory()
	if len(trades) == 0 {
		return
	}
	fmt.Println("\nTrade history:")
	for i, tr := range trades {
		fmt.Printf("  Trade %d: %s %d @ %.2f -> %.2f, P&L: $%.2f\n",
			i+1, tr.Side, tr.Quantity, tr.EntryPrice, tr.ExitPrice, tr.PL)
	}
}
