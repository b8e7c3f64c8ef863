package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"orbot/broker"
	"orbot/calendar"
	"orbot/config"
	"orbot/market"
	"orbot/metrics"
	"orbot/orders"
	"orbot/risk"
	"orbot/strategy"
)

// State is the session phase of the engine.
type State string

const (
	StateInitializing       State = "initializing"
	StateWaitingForOpen     State = "waiting_for_open"
	StateCalculatingRange   State = "calculating_range"
	StateWaitingForBreakout State = "waiting_for_breakout"
	StateInPosition         State = "in_position"
	StateWindowClosed       State = "window_closed"
	StateStopped            State = "stopped"
)

// ordinal maps states onto a gauge-friendly scale.
func (s State) ordinal() float64 {
	switch s {
	case StateInitializing:
		return 0
	case StateWaitingForOpen:
		return 1
	case StateCalculatingRange:
		return 2
	case StateWaitingForBreakout:
		return 3
	case StateInPosition:
		return 4
	case StateWindowClosed:
		return 5
	default:
		return 6
	}
}

const dateLayout = "2006-01-02"

// Bot is the bar-driven session state machine. Exactly one bar is processed
// to completion before the next is accepted; every exported method takes the
// single mutex, so a concurrent front end (the HTTP control surface) is
// serialized behind it.
type Bot struct {
	mu  sync.Mutex
	cfg *config.Config
	log *zap.Logger
	loc *time.Location

	window   *market.Window
	broker   broker.Broker
	ranges   *strategy.RangeCalculator
	detector *strategy.Detector
	orders   *orders.Manager
	riskMgr  *risk.Manager
	news     *calendar.NewsFilter

	state       State
	running     bool
	currentDate string

	windowStart config.ClockTime
	windowEnd   config.ClockTime
}

// New wires the engine from a validated config and an execution engine.
func New(cfg *config.Config, b broker.Broker, log *zap.Logger) (*Bot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new bot: %w", err)
	}

	start, err := config.ParseClock(cfg.Strategy.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("new bot: %w", err)
	}
	end, err := config.ParseClock(cfg.Strategy.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("new bot: %w", err)
	}

	window := market.NewWindow(market.DefaultCapacity)
	ranges := strategy.NewRangeCalculator(window, cfg.Strategy.OpeningRangeMinutes, start, log.Named("range"))
	detector := strategy.NewDetector(window, ranges,
		cfg.Strategy.MinBreakoutPoints, cfg.Strategy.VolumeMultiplier, log.Named("breakout"))
	om := orders.NewManager(b, ranges, cfg.Trading.Symbol, cfg.Trading.PointValue, log.Named("orders"))
	rm := risk.NewManager(b, cfg.Risk.MaxPositionSize, cfg.Risk.MaxDailyLoss,
		cfg.Risk.MaxDailyTrades, cfg.Trading.PointValue, log.Named("risk"))
	news := calendar.NewNewsFilter(cfg.Filters.AvoidNewsDays, log.Named("news"))

	return &Bot{
		cfg:         cfg,
		log:         log,
		loc:         cfg.Location(),
		window:      window,
		broker:      b,
		ranges:      ranges,
		detector:    detector,
		orders:      om,
		riskMgr:     rm,
		news:        news,
		state:       StateInitializing,
		windowStart: start,
		windowEnd:   end,
	}, nil
}

// Start connects the execution engine and arms the state machine.
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return fmt.Errorf("start: already running")
	}
	if err := b.broker.Connect(); err != nil {
		return fmt.Errorf("start: connect broker: %w", err)
	}

	b.running = true
	b.state = StateWaitingForOpen

	b.log.Info("engine started",
		zap.String("symbol", b.cfg.Trading.Symbol),
		zap.Int("opening_range_minutes", b.cfg.Strategy.OpeningRangeMinutes),
		zap.String("window", b.cfg.Strategy.WindowStart+"-"+b.cfg.Strategy.WindowEnd),
		zap.Float64("risk_reward", b.cfg.Strategy.RiskRewardRatio),
		zap.Int("max_position_size", b.cfg.Risk.MaxPositionSize),
		zap.Float64("max_daily_loss", b.cfg.Risk.MaxDailyLoss))
	return nil
}

// Stop force-closes any open position through the normal close path, then
// disconnects. Safe to call more than once.
func (b *Bot) Stop(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.log.Info("stopping engine")
	b.running = false
	b.state = StateStopped

	if b.orders.HasOpenPosition() {
		if err := b.orders.ClosePosition(ctx, orders.ExitShutdown); err != nil {
			b.log.Error("close position on shutdown", zap.Error(err))
		}
	}
	b.broker.Disconnect()
	b.log.Info("engine stopped")
}

// OnBar processes one bar to completion through the state machine. Callers
// must serialize delivery; bars must arrive in time order.
func (b *Bot) OnBar(ctx context.Context, bar market.Bar) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return fmt.Errorf("on bar: engine not running")
	}

	b.window.Add(bar)
	b.broker.UpdatePrice(b.cfg.Trading.Symbol, bar.Close, bar.Time)
	metrics.BarsProcessed.Inc()

	now := bar.Time.In(b.loc)
	if key := now.Format(dateLayout); key != b.currentDate {
		b.handleNewDay(now, key)
	}

	switch b.state {
	case StateWaitingForOpen:
		b.handleWaitingForOpen(now)
	case StateCalculatingRange:
		b.handleCalculatingRange(now)
	case StateWaitingForBreakout:
		b.handleWaitingForBreakout(ctx, now, bar)
	case StateInPosition:
		b.handleInPosition(ctx, now, bar)
	case StateWindowClosed:
		// Wait for the next day's rollover.
	}

	metrics.Balance.Set(b.broker.Balance())
	metrics.DailyPL.Set(b.broker.DailyPL())
	metrics.EngineState.Set(b.state.ordinal())
	return nil
}

func (b *Bot) handleNewDay(now time.Time, key string) {
	b.log.Info("new trading day", zap.String("date", key))
	b.currentDate = key

	allowed, reason := b.news.IsTradingAllowed(now)
	if !allowed {
		b.log.Warn("trading suspended today", zap.String("reason", reason))
		b.state = StateWindowClosed
		return
	}

	b.ranges.Reset()
	b.detector.Reset()
	b.riskMgr.ResetDaily()
	b.state = StateWaitingForOpen
}

func (b *Bot) handleWaitingForOpen(now time.Time) {
	if now.Before(b.windowStart.On(now)) {
		return
	}
	b.log.Info("market open", zap.Time("at", now))
	b.state = StateCalculatingRange
}

func (b *Bot) handleCalculatingRange(now time.Time) {
	if b.ranges.Calculate(now) {
		b.state = StateWaitingForBreakout
	}
}

func (b *Bot) handleWaitingForBreakout(ctx context.Context, now time.Time, bar market.Bar) {
	if !now.Before(b.windowEnd.On(now)) {
		b.log.Info("trading window closed, no breakout occurred")
		b.state = StateWindowClosed
		return
	}

	if can, reason := b.riskMgr.CheckCanTrade(); !can {
		b.log.Warn("cannot trade", zap.String("reason", reason))
		metrics.RiskDenials.Inc()
		b.state = StateWindowClosed
		return
	}

	sig := b.detector.Check(bar, b.cfg.Strategy.VolumeConfirmation)
	if sig == nil {
		return
	}
	metrics.SignalsEmitted.Inc()
	b.handleSignal(ctx, sig)
}

func (b *Bot) handleSignal(ctx context.Context, sig *strategy.Signal) {
	b.log.Info("breakout signal", zap.String("signal", sig.String()))

	// Re-check: the signal itself does not bypass the risk gate.
	if can, reason := b.riskMgr.CheckCanTrade(); !can {
		b.log.Warn("breakout detected but cannot trade", zap.String("reason", reason))
		metrics.RiskDenials.Inc()
		return
	}

	rng := b.ranges.Range()
	var riskPoints float64
	if sig.Direction == strategy.Bullish {
		riskPoints = sig.Price - rng.Low
	} else {
		riskPoints = rng.High - sig.Price
	}

	quantity := b.riskMgr.PositionSize(b.broker.Balance(), riskPoints, b.cfg.Strategy.RiskPercent)

	if err := b.orders.CreateBracket(ctx, sig, quantity, b.cfg.Strategy.RiskRewardRatio); err != nil {
		// The day's opportunity survives only as far as the detector latch;
		// state stays unchanged and no bracket exists.
		b.log.Error("create bracket failed", zap.Error(err))
		return
	}

	metrics.TradesOpened.Inc()
	b.state = StateInPosition
}

func (b *Bot) handleInPosition(ctx context.Context, now time.Time, bar market.Bar) {
	if reason := b.orders.CheckExit(bar.Close); reason != "" {
		b.log.Info("exit signal", zap.String("reason", reason))
		b.closePosition(ctx, reason)
		return
	}

	if !now.Before(b.windowEnd.On(now)) {
		b.log.Info("trading window closed, closing position")
		b.closePosition(ctx, orders.ExitTimeLimit)
	}
}

func (b *Bot) closePosition(ctx context.Context, reason string) {
	if err := b.orders.ClosePosition(ctx, reason); err != nil {
		b.log.Error("close position failed", zap.Error(err))
		return
	}
	metrics.TradesClosed.Inc()

	stats := b.broker.Statistics()
	b.log.Info("trade complete",
		zap.String("reason", reason),
		zap.Int("total_trades", stats.TotalTrades),
		zap.Float64("win_rate", stats.WinRate),
		zap.Float64("daily_pnl", b.broker.DailyPL()))
	b.state = StateWindowClosed
}
