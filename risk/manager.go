package risk

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"orbot/broker"
)

// Manager enforces the hard daily risk limits and sizes positions. Its
// checks are stateless policy over broker-reported state.
type Manager struct {
	broker broker.Broker
	log    *zap.Logger

	maxPositionSize int
	maxDailyLoss    float64
	maxDailyTrades  int
	pointValue      float64
}

func NewManager(b broker.Broker, maxPositionSize int, maxDailyLoss float64, maxDailyTrades int, pointValue float64, log *zap.Logger) *Manager {
	return &Manager{
		broker:          b,
		log:             log,
		maxPositionSize: maxPositionSize,
		maxDailyLoss:    maxDailyLoss,
		maxDailyTrades:  maxDailyTrades,
		pointValue:      pointValue,
	}
}

// CheckCanTrade reports whether a new trade may be opened. The daily loss
// limit is checked first, then the trade count, then open positions; the
// first failing check determines the reason.
func (m *Manager) CheckCanTrade() (bool, string) {
	if pl := m.broker.DailyPL(); pl <= -m.maxDailyLoss {
		return false, fmt.Sprintf("daily loss limit reached: %.2f", pl)
	}
	if trades := m.broker.TradesToday(); trades >= m.maxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached: %d trades", trades)
	}
	if len(m.broker.Positions()) > 0 {
		return false, "position already open"
	}
	return true, "ok"
}

// PositionSize returns the contract count for a trade risking riskPoints per
// contract with riskPercent of balance at stake, clamped to
// [1, maxPositionSize]. A non-positive riskPoints is forgiven with a warning
// and a fallback size of 1.
func (m *Manager) PositionSize(balance, riskPoints, riskPercent float64) int {
	if riskPoints <= 0 {
		m.log.Warn("invalid risk points for position sizing",
			zap.Float64("risk_points", riskPoints))
		return 1
	}

	maxRisk := balance * riskPercent
	perContract := riskPoints * m.pointValue
	size := int(math.Floor(maxRisk / perContract))

	if size > m.maxPositionSize {
		size = m.maxPositionSize
	}
	if size < 1 {
		size = 1
	}

	m.log.Info("position sized",
		zap.Float64("balance", balance),
		zap.Float64("risk_points", riskPoints),
		zap.Float64("risk_per_contract", perContract),
		zap.Int("size", size))
	return size
}

// ResetDaily clears the broker's daily counters at day rollover.
func (m *Manager) ResetDaily() {
	m.broker.ResetDailyStats()
	m.log.Info("daily risk stats reset")
}

// Status is a read-only projection of the current risk state.
type Status struct {
	MaxPositionSize int     `json:"max_position_size"`
	MaxDailyLoss    float64 `json:"max_daily_loss"`
	MaxDailyTrades  int     `json:"max_daily_trades"`
	DailyPL         float64 `json:"daily_pnl"`
	RemainingLoss   float64 `json:"remaining_loss_limit"`
	TradesToday     int     `json:"trades_today"`
	RemainingTrades int     `json:"remaining_trades"`
	CanTrade        bool    `json:"can_trade"`
	Reason          string  `json:"reason"`
}

func (m *Manager) Status() Status {
	st := Status{
		MaxPositionSize: m.maxPositionSize,
		MaxDailyLoss:    m.maxDailyLoss,
		MaxDailyTrades:  m.maxDailyTrades,
		DailyPL:         m.broker.DailyPL(),
		TradesToday:     m.broker.TradesToday(),
	}
	st.RemainingLoss = m.maxDailyLoss + st.DailyPL
	st.RemainingTrades = m.maxDailyTrades - st.TradesToday
	st.CanTrade, st.Reason = m.CheckCanTrade()
	return st
}
