package simulate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orbot/bot"
	"orbot/config"
	"orbot/sim"
)

func TestRunFullDayDrivesEngine(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Trading.Timezone = "UTC"
	engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, nil, zap.NewNop())
	b, err := bot.New(cfg, engine, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.Start())
	defer b.Stop(context.Background())

	s := New(b, 5000, 42, zap.NewNop())
	open := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.RunFullDay(context.Background(), open))

	snap := b.Status()
	// The session ran: a range was latched and the day progressed past it.
	assert.Equal(t, "2026-03-02", snap.CurrentDate)
	assert.NotEqual(t, bot.StateInitializing, snap.State)
	assert.NotEqual(t, bot.StateWaitingForOpen, snap.State)
	assert.NotEqual(t, bot.StateCalculatingRange, snap.State)
}

func TestRunFullDayAlwaysEnters(t *testing.T) {
	t.Parallel()

	// The crossing bar carries the volume spike regardless of where the
	// seeded walk leaves the band, so every session produces an entry.
	for _, seed := range []int64{1, 7, 42, 1234} {
		cfg := config.Default()
		cfg.Trading.Timezone = "UTC"
		engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, nil, zap.NewNop())
		b, err := bot.New(cfg, engine, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, b.Start())

		s := New(b, 5000, seed, zap.NewNop())
		open := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
		require.NoError(t, s.RunFullDay(context.Background(), open))

		entered := b.Statistics().TotalTrades > 0 || b.Status().Position != nil
		assert.True(t, entered, "seed %d produced no entry", seed)
		b.Stop(context.Background())
	}
}

func TestRunFullDayNotRunning(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Trading.Timezone = "UTC"
	engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, nil, zap.NewNop())
	b, err := bot.New(cfg, engine, zap.NewNop())
	require.NoError(t, err)

	s := New(b, 5000, 42, zap.NewNop())
	open := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	assert.Error(t, s.RunFullDay(context.Background(), open))
}
