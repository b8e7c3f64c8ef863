package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orbot/config"
	"orbot/market"
	"orbot/sim"
)

// monday is a 2026 trading day with no scheduled news.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Trading.Timezone = "UTC"
	cfg.Trading.InitialBalance = 100000
	return cfg
}

func newTestBot(t *testing.T, cfg *config.Config) (*Bot, *sim.Engine) {
	t.Helper()

	engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, nil, zap.NewNop())
	b, err := New(cfg, engine, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.Start())
	t.Cleanup(func() { b.Stop(context.Background()) })
	return b, engine
}

func feed(t *testing.T, b *Bot, day time.Time, hh, mm int, high, low, close float64, volume int64) {
	t.Helper()
	bar := market.Bar{
		Time:   time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, time.UTC),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
	require.NoError(t, b.OnBar(context.Background(), bar))
}

// feedOpeningRange delivers the 09:30-09:34 bars that latch a 5010/5000
// range, plus the 09:35 bar that ends the opening window.
func feedOpeningRange(t *testing.T, b *Bot, day time.Time) {
	t.Helper()
	for m := 30; m <= 34; m++ {
		feed(t, b, day, 9, m, 5010, 5000, 5005, 1000)
	}
	feed(t, b, day, 9, 35, 5006, 5004, 5005, 1000)

	snap := b.Status()
	require.Equal(t, StateWaitingForBreakout, snap.State)
	require.NotNil(t, snap.OpeningRange)
	require.Equal(t, 5010.0, snap.OpeningRange.High)
	require.Equal(t, 5000.0, snap.OpeningRange.Low)
}

func TestFullDayBullishTarget(t *testing.T) {
	t.Parallel()

	b, engine := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)

	// Confirmed bullish breakout: clears 5010 + 0.25 with a volume spike.
	feed(t, b, monday, 9, 36, 5012, 5008, 5011, 3000)

	snap := b.Status()
	require.Equal(t, StateInPosition, snap.State)
	require.NotNil(t, snap.Position)
	assert.Equal(t, "buy", snap.Position.Side)
	assert.Equal(t, 2, snap.Position.Quantity)
	assert.Equal(t, 5011.0, snap.Position.EntryPrice)
	assert.Equal(t, 5000.0, snap.Position.StopPrice)
	assert.InDelta(t, 5033.0, snap.Position.TargetPrice, 1e-9)

	// Between stop and target: stays in position.
	feed(t, b, monday, 9, 40, 5022, 5015, 5020, 1200)
	assert.Equal(t, StateInPosition, b.Status().State)

	// Target touch closes the trade: 22 points x 2 contracts x $50.
	feed(t, b, monday, 9, 45, 5034, 5030, 5033, 1500)

	snap = b.Status()
	assert.Equal(t, StateWindowClosed, snap.State)
	assert.Nil(t, snap.Position)
	assert.InDelta(t, 102200.0, engine.Balance(), 1e-9)
	assert.InDelta(t, 2200.0, engine.DailyPL(), 1e-9)

	stats := b.Statistics()
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.WinningTrades)

	// Later bars are ignored until the next day.
	feed(t, b, monday, 10, 0, 5100, 5090, 5095, 5000)
	assert.Equal(t, StateWindowClosed, b.Status().State)
	assert.Equal(t, 1, b.Statistics().TotalTrades)
}

func TestFullDayBearishStopLoss(t *testing.T) {
	t.Parallel()

	b, engine := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)

	// Bearish breakout below 5000 - 0.25.
	feed(t, b, monday, 9, 36, 5001, 4998, 4999, 3000)

	snap := b.Status()
	require.Equal(t, StateInPosition, snap.State)
	require.NotNil(t, snap.Position)
	assert.Equal(t, "sell", snap.Position.Side)
	assert.Equal(t, 5010.0, snap.Position.StopPrice)

	// Price reverses through the range high: stop out.
	feed(t, b, monday, 9, 50, 5012, 5005, 5010, 2000)

	snap = b.Status()
	assert.Equal(t, StateWindowClosed, snap.State)
	assert.Nil(t, snap.Position)

	// Short from 4999 stopped at 5010: -11 points x 2 x $50.
	assert.InDelta(t, -1100.0, engine.DailyPL(), 1e-9)
	assert.Equal(t, 1, b.Statistics().LosingTrades)
}

func TestTimeLimitExitAtWindowEnd(t *testing.T) {
	t.Parallel()

	b, engine := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)
	feed(t, b, monday, 9, 36, 5012, 5008, 5011, 3000)
	require.Equal(t, StateInPosition, b.Status().State)

	// Drifts without touching stop or target until the window closes.
	feed(t, b, monday, 11, 0, 5016, 5012, 5015, 900)
	require.Equal(t, StateInPosition, b.Status().State)
	feed(t, b, monday, 11, 30, 5016, 5012, 5015, 900)

	assert.Equal(t, StateWindowClosed, b.Status().State)
	// Flat close at 5015: +4 points x 2 x $50.
	assert.InDelta(t, 400.0, engine.DailyPL(), 1e-9)
}

func TestNoBreakoutBeforeWindowEnd(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)

	// Chop inside the range all session.
	feed(t, b, monday, 10, 0, 5008, 5002, 5005, 1000)
	feed(t, b, monday, 11, 0, 5009, 5001, 5004, 1000)
	assert.Equal(t, StateWaitingForBreakout, b.Status().State)

	feed(t, b, monday, 11, 30, 5008, 5002, 5006, 1000)
	assert.Equal(t, StateWindowClosed, b.Status().State)
	assert.Zero(t, b.Statistics().TotalTrades)
}

func TestUnconfirmedBreakoutDoesNotEnter(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)

	// Breaks the range on weak volume: no entry, detector stays armed.
	feed(t, b, monday, 9, 36, 5012, 5008, 5011, 1000)
	assert.Equal(t, StateWaitingForBreakout, b.Status().State)

	// The confirmed push fires.
	feed(t, b, monday, 9, 37, 5013, 5009, 5012, 4000)
	assert.Equal(t, StateInPosition, b.Status().State)
}

func TestDayRolloverResetsEverything(t *testing.T) {
	t.Parallel()

	b, engine := newTestBot(t, testConfig())

	// Day one: full winning trade.
	feedOpeningRange(t, b, monday)
	feed(t, b, monday, 9, 36, 5012, 5008, 5011, 3000)
	feed(t, b, monday, 9, 45, 5034, 5030, 5033, 1500)
	require.Equal(t, StateWindowClosed, b.Status().State)
	require.InDelta(t, 2200.0, engine.DailyPL(), 1e-9)

	// Day two: rollover resets range, detector, and daily stats, and the
	// bot trades again from a fresh range.
	tuesday := monday.AddDate(0, 0, 1)
	feed(t, b, tuesday, 9, 30, 5040, 5030, 5035, 1000)

	snap := b.Status()
	assert.Equal(t, tuesday.Format("2006-01-02"), snap.CurrentDate)
	assert.Nil(t, snap.OpeningRange)
	assert.Zero(t, engine.DailyPL())
	assert.Zero(t, engine.TradesToday())

	for m := 31; m <= 34; m++ {
		feed(t, b, tuesday, 9, m, 5040, 5030, 5035, 1000)
	}
	feed(t, b, tuesday, 9, 35, 5036, 5034, 5035, 1000)

	snap = b.Status()
	require.Equal(t, StateWaitingForBreakout, snap.State)
	require.NotNil(t, snap.OpeningRange)
	assert.Equal(t, 5040.0, snap.OpeningRange.High)

	feed(t, b, tuesday, 9, 36, 5042, 5038, 5041, 3000)
	assert.Equal(t, StateInPosition, b.Status().State)

	// Balance carried over from day one.
	assert.InDelta(t, 102200.0, engine.Balance(), 1e-9)

	// Long from 5041 reaches 5041 + 2x11 risk points: +22 x 2 x $50.
	feed(t, b, tuesday, 9, 45, 5064, 5060, 5063, 1500)
	require.Equal(t, StateWindowClosed, b.Status().State)
	require.InDelta(t, 2200.0, engine.DailyPL(), 1e-9)
	require.Equal(t, 2, engine.TradesToday())

	// Day three: the second rollover resets the daily state again.
	wednesday := monday.AddDate(0, 0, 2)
	feed(t, b, wednesday, 9, 30, 5070, 5060, 5065, 1000)

	snap = b.Status()
	assert.Equal(t, wednesday.Format("2006-01-02"), snap.CurrentDate)
	assert.Nil(t, snap.OpeningRange)
	assert.Zero(t, engine.DailyPL())
	assert.Zero(t, engine.TradesToday())

	for m := 31; m <= 34; m++ {
		feed(t, b, wednesday, 9, m, 5070, 5060, 5065, 1000)
	}
	feed(t, b, wednesday, 9, 35, 5066, 5064, 5065, 1000)
	feed(t, b, wednesday, 9, 36, 5072, 5068, 5071, 3000)

	snap = b.Status()
	require.Equal(t, StateInPosition, snap.State)
	require.NotNil(t, snap.OpeningRange)
	assert.Equal(t, 5070.0, snap.OpeningRange.High)

	// Further same-day bars must not reset again: the open trade's daily
	// accounting survives until the next rollover.
	feed(t, b, wednesday, 9, 40, 5075, 5072, 5074, 1200)
	assert.Equal(t, 1, engine.TradesToday())
	assert.InDelta(t, 300.0, engine.DailyPL(), 1e-9) // +3 pts x 2 x $50 unrealized
	assert.InDelta(t, 104400.0, engine.Balance(), 1e-9)
}

func TestNewsDaySuspendsTrading(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, testConfig())

	// 2026-03-06 is an employment report day.
	nfp := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	feed(t, b, nfp, 9, 30, 5010, 5000, 5005, 1000)
	assert.Equal(t, StateWindowClosed, b.Status().State)

	// Even a perfect breakout pattern is ignored all day.
	for m := 31; m <= 36; m++ {
		feed(t, b, nfp, 9, m, 5050, 5040, 5045, 5000)
	}
	assert.Equal(t, StateWindowClosed, b.Status().State)
	assert.Zero(t, b.Statistics().TotalTrades)

	// The following clear day trades normally again.
	clearDay := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	feed(t, b, clearDay, 9, 30, 5010, 5000, 5005, 1000)
	assert.Equal(t, StateCalculatingRange, b.Status().State)
}

func TestPreOpenBarsWait(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, testConfig())

	feed(t, b, monday, 9, 0, 5010, 5000, 5005, 1000)
	assert.Equal(t, StateWaitingForOpen, b.Status().State)
	feed(t, b, monday, 9, 29, 5010, 5000, 5005, 1000)
	assert.Equal(t, StateWaitingForOpen, b.Status().State)

	feed(t, b, monday, 9, 30, 5010, 5000, 5005, 1000)
	assert.Equal(t, StateCalculatingRange, b.Status().State)
}

func TestOnBarWhenStopped(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	engine := sim.NewEngine(cfg.Trading.InitialBalance, cfg.Trading.PointValue, nil, zap.NewNop())
	b, err := New(cfg, engine, zap.NewNop())
	require.NoError(t, err)

	bar := market.Bar{Time: monday.Add(9 * time.Hour), Open: 5005, High: 5010, Low: 5000, Close: 5005, Volume: 1000}
	assert.Error(t, b.OnBar(context.Background(), bar))

	require.NoError(t, b.Start())
	assert.Error(t, b.Start())

	b.Stop(context.Background())
	assert.Error(t, b.OnBar(context.Background(), bar))
}

func TestStopClosesOpenPosition(t *testing.T) {
	t.Parallel()

	b, engine := newTestBot(t, testConfig())
	feedOpeningRange(t, b, monday)
	feed(t, b, monday, 9, 36, 5012, 5008, 5011, 3000)
	require.Equal(t, StateInPosition, b.Status().State)

	b.Stop(context.Background())

	assert.Empty(t, engine.Positions())
	assert.False(t, engine.Connected())
	assert.Equal(t, 1, len(engine.TradeHistory()))
	assert.Equal(t, StateStopped, b.Status().State)
}

func TestInvalidConfigRejected(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Risk.MaxDailyTrades = 0
	engine := sim.NewEngine(100000, 50, nil, zap.NewNop())

	_, err := New(cfg, engine, zap.NewNop())
	assert.Error(t, err)
}
