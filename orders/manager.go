package orders

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"orbot/broker"
	"orbot/strategy"
)

// Exit reasons reported by CheckExit and accepted by ClosePosition.
const (
	ExitStopLoss  = "stop_loss"
	ExitTarget    = "target"
	ExitTimeLimit = "time_limit"
	ExitShutdown  = "bot_shutdown"
)

// Manager turns a breakout signal into a bracket (a market entry with a
// derived stop and target) and tracks the single open position. It owns the
// bracket intent; the broker remains the source of truth for fills.
type Manager struct {
	broker     broker.Broker
	calc       *strategy.RangeCalculator
	symbol     string
	pointValue float64
	log        *zap.Logger

	entryOrder  *broker.Order
	entryPrice  float64
	stopPrice   float64
	targetPrice float64
}

func NewManager(b broker.Broker, calc *strategy.RangeCalculator, symbol string, pointValue float64, log *zap.Logger) *Manager {
	return &Manager{
		broker:     b,
		calc:       calc,
		symbol:     symbol,
		pointValue: pointValue,
		log:        log,
	}
}

// CreateBracket submits the market entry for the signal's direction and
// derives stop and target from the opening range:
// bullish stop = range low, bearish stop = range high,
// target = entry +/- risk x riskRewardRatio.
// On submission failure no bracket state is mutated.
func (m *Manager) CreateBracket(ctx context.Context, sig *strategy.Signal, quantity int, riskRewardRatio float64) error {
	rng := m.calc.Range()
	if !rng.Calculated {
		return fmt.Errorf("create bracket: opening range not calculated")
	}

	side := broker.Buy
	if sig.Direction == strategy.Bearish {
		side = broker.Sell
	}

	entry := &broker.Order{
		Symbol:   m.symbol,
		Side:     side,
		Quantity: quantity,
		Type:     broker.Market,
	}
	if err := m.broker.SubmitOrder(ctx, entry); err != nil {
		return fmt.Errorf("create bracket: submit entry: %w", err)
	}

	m.entryOrder = entry
	m.entryPrice = sig.Price

	var risk float64
	if sig.Direction == strategy.Bullish {
		m.stopPrice = rng.Low
		risk = m.entryPrice - m.stopPrice
		m.targetPrice = m.entryPrice + risk*riskRewardRatio
	} else {
		m.stopPrice = rng.High
		risk = m.stopPrice - m.entryPrice
		m.targetPrice = m.entryPrice - risk*riskRewardRatio
	}

	m.log.Info("bracket created",
		zap.String("side", string(side)),
		zap.Int("quantity", quantity),
		zap.Float64("entry", m.entryPrice),
		zap.Float64("stop", m.stopPrice),
		zap.Float64("target", m.targetPrice),
		zap.Float64("risk_points", risk),
		zap.Float64("risk_currency", risk*float64(quantity)*m.pointValue))
	return nil
}

// CheckExit evaluates the bracket against the current price. It returns ""
// until the entry order is confirmed filled. The stop is checked before the
// target so that a tie resolves to the loss-protecting exit.
func (m *Manager) CheckExit(price float64) string {
	if m.entryOrder == nil {
		return ""
	}
	if m.broker.OrderStatus(m.entryOrder.ID) != broker.Filled {
		return ""
	}

	if m.entryOrder.Side == broker.Buy {
		if price <= m.stopPrice {
			return ExitStopLoss
		}
		if price >= m.targetPrice {
			return ExitTarget
		}
		return ""
	}

	if price >= m.stopPrice {
		return ExitStopLoss
	}
	if price <= m.targetPrice {
		return ExitTarget
	}
	return ""
}

// ClosePosition submits an opposite-side market order for the full quantity
// and clears the bracket. Fills are synchronous for market orders, so a
// successfully submitted close is treated as filled; if fills ever become
// asynchronous this optimism must be revisited.
func (m *Manager) ClosePosition(ctx context.Context, reason string) error {
	if m.entryOrder == nil {
		return fmt.Errorf("close position: no open position")
	}

	exit := &broker.Order{
		Symbol:   m.symbol,
		Side:     m.entryOrder.Side.Opposite(),
		Quantity: m.entryOrder.Quantity,
		Type:     broker.Market,
	}
	if err := m.broker.SubmitOrder(ctx, exit); err != nil {
		return fmt.Errorf("close position: submit exit: %w", err)
	}

	m.log.Info("position closed", zap.String("reason", reason))

	m.entryOrder = nil
	m.entryPrice = 0
	m.stopPrice = 0
	m.targetPrice = 0
	return nil
}

// HasOpenPosition reports whether the entry order exists and the broker
// reports it filled.
func (m *Manager) HasOpenPosition() bool {
	if m.entryOrder == nil {
		return false
	}
	return m.broker.OrderStatus(m.entryOrder.ID) == broker.Filled
}

// PositionInfo is a read-only projection of the current bracket.
type PositionInfo struct {
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Quantity     int     `json:"quantity"`
	EntryPrice   float64 `json:"entry_price"`
	StopPrice    float64 `json:"stop_price"`
	TargetPrice  float64 `json:"target_price"`
	RiskPoints   float64 `json:"risk_points"`
	RewardPoints float64 `json:"reward_points"`
}

// Info returns the bracket snapshot, or ok=false with no open position.
func (m *Manager) Info() (PositionInfo, bool) {
	if !m.HasOpenPosition() {
		return PositionInfo{}, false
	}
	return PositionInfo{
		Symbol:       m.symbol,
		Side:         string(m.entryOrder.Side),
		Quantity:     m.entryOrder.Quantity,
		EntryPrice:   m.entryPrice,
		StopPrice:    m.stopPrice,
		TargetPrice:  m.targetPrice,
		RiskPoints:   math.Abs(m.entryPrice - m.stopPrice),
		RewardPoints: math.Abs(m.targetPrice - m.entryPrice),
	}, true
}
