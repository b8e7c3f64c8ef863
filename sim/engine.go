package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"orbot/broker"
	"orbot/journal"
	"orbot/pkg/id"
)

// Engine is a paper broker. Market orders fill synchronously at the last
// known price for the symbol; a submitted order with no known price stays
// submitted and is never retried automatically. The engine owns money and
// position truth: balance only changes when a position closes.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger

	pointValue float64
	balance    float64
	connected  bool

	prices     map[string]float64
	priceTimes map[string]time.Time
	orders     map[string]*broker.Order
	positions  map[string]*broker.Position

	history     []broker.TradeRecord
	dailyPL     float64 // realized since last daily reset
	tradesToday int

	journal journal.Journal
}

var _ broker.Broker = (*Engine)(nil)

func NewEngine(initialBalance, pointValue float64, j journal.Journal, log *zap.Logger) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{
		log:        log,
		pointValue: pointValue,
		balance:    initialBalance,
		prices:     make(map[string]float64),
		priceTimes: make(map[string]time.Time),
		orders:     make(map[string]*broker.Order),
		positions:  make(map[string]*broker.Position),
		journal:    j,
	}
}

func (e *Engine) Connect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = true
	e.log.Info("connected to paper broker")
	return nil
}

func (e *Engine) Disconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = false
	e.log.Info("disconnected from paper broker")
}

func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// UpdatePrice sets the last known price for symbol and revalues the open
// position, if any.
func (e *Engine) UpdatePrice(symbol string, price float64, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prices[symbol] = price
	e.priceTimes[symbol] = at

	if pos, ok := e.positions[symbol]; ok {
		pos.UnrealizedPL = e.unrealizedLocked(pos, price)
	}
}

// SubmitOrder accepts the order and, for market orders, fills it immediately
// at the last known price. With no price known the order stays submitted;
// the caller must not assume it succeeded until its status reads filled.
func (e *Engine) SubmitOrder(_ context.Context, o *broker.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.connected {
		o.Status = broker.Rejected
		return fmt.Errorf("submit order: not connected to broker")
	}

	o.ID = id.New()
	o.Status = broker.Submitted
	o.SubmitTime = time.Now()
	e.orders[o.ID] = o

	e.log.Info("order submitted",
		zap.String("id", o.ID),
		zap.String("symbol", o.Symbol),
		zap.String("side", string(o.Side)),
		zap.Int("quantity", o.Quantity))

	if o.Type == broker.Market {
		e.fillLocked(o)
	}

	return nil
}

func (e *Engine) fillLocked(o *broker.Order) {
	price, ok := e.prices[o.Symbol]
	if !ok {
		e.log.Warn("no price data, cannot fill order",
			zap.String("id", o.ID), zap.String("symbol", o.Symbol))
		return
	}

	o.FilledPrice = price
	o.FilledQty = o.Quantity
	o.Status = broker.Filled
	e.tradesToday++

	e.applyFillLocked(o)

	e.log.Info("order filled",
		zap.String("id", o.ID), zap.Float64("price", price))
}

func (e *Engine) applyFillLocked(o *broker.Order) {
	pos, ok := e.positions[o.Symbol]
	if !ok {
		e.positions[o.Symbol] = &broker.Position{
			Symbol:     o.Symbol,
			Side:       o.Side,
			Quantity:   o.Quantity,
			EntryPrice: o.FilledPrice,
			EntryTime:  o.SubmitTime,
		}
		e.log.Info("position opened",
			zap.String("symbol", o.Symbol),
			zap.String("side", string(o.Side)),
			zap.Int("quantity", o.Quantity),
			zap.Float64("entry", o.FilledPrice))
		return
	}

	if pos.Side == o.Side {
		// Same direction: quantity-weighted average entry.
		total := pos.Quantity + o.Quantity
		pos.EntryPrice = (pos.EntryPrice*float64(pos.Quantity) +
			o.FilledPrice*float64(o.Quantity)) / float64(total)
		pos.Quantity = total
		return
	}

	if o.Quantity >= pos.Quantity {
		e.closePositionLocked(pos, o.FilledPrice, o.SubmitTime)
		return
	}

	pos.Quantity -= o.Quantity
}

func (e *Engine) closePositionLocked(pos *broker.Position, exitPrice float64, at time.Time) {
	pl := realizedPL(pos.Side, pos.EntryPrice, exitPrice, pos.Quantity, e.pointValue)

	e.balance += pl
	e.dailyPL += pl

	rec := broker.TradeRecord{
		ID:         id.New(),
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		PL:         pl,
		CloseTime:  at,
	}
	e.history = append(e.history, rec)
	delete(e.positions, pos.Symbol)

	e.log.Info("position closed",
		zap.String("symbol", pos.Symbol),
		zap.Float64("pl", pl),
		zap.Float64("balance", e.balance))

	if err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    rec.ID,
		Symbol:     rec.Symbol,
		Side:       string(rec.Side),
		Quantity:   rec.Quantity,
		EntryPrice: rec.EntryPrice,
		ExitPrice:  rec.ExitPrice,
		RealizedPL: rec.PL,
		CloseTime:  rec.CloseTime,
	}); err != nil {
		e.log.Warn("journal trade record failed", zap.Error(err))
	}
	if err := e.journal.RecordBalance(journal.BalanceSnapshot{
		Time:    rec.CloseTime,
		Balance: e.balance,
		DailyPL: e.dailyPL,
	}); err != nil {
		e.log.Warn("journal balance snapshot failed", zap.Error(err))
	}
}

func (e *Engine) CancelOrder(orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[orderID]
	if !ok {
		return fmt.Errorf("cancel order: order %q not found", orderID)
	}
	if o.Status == broker.Filled || o.Status == broker.Cancelled {
		return fmt.Errorf("cancel order: order %q already %s", orderID, o.Status)
	}

	o.Status = broker.Cancelled
	e.log.Info("order cancelled", zap.String("id", orderID))
	return nil
}

func (e *Engine) OrderStatus(orderID string) broker.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if o, ok := e.orders[orderID]; ok {
		return o.Status
	}
	return broker.Rejected
}

func (e *Engine) Position(symbol string) (broker.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pos, ok := e.positions[symbol]; ok {
		return *pos, true
	}
	return broker.Position{}, false
}

func (e *Engine) Positions() []broker.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]broker.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, *pos)
	}
	return out
}

func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// DailyPL reports realized P&L since the daily reset plus unrealized P&L of
// open positions.
func (e *Engine) DailyPL() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	pl := e.dailyPL
	for _, pos := range e.positions {
		pl += pos.UnrealizedPL
	}
	return pl
}

func (e *Engine) TradesToday() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tradesToday
}

func (e *Engine) ResetDailyStats() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dailyPL = 0
	e.tradesToday = 0
	e.log.Info("daily stats reset")
}

func (e *Engine) TradeHistory() []broker.TradeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]broker.TradeRecord, len(e.history))
	copy(out, e.history)
	return out
}

// Statistics recomputes the aggregate stats from the full trade history.
func (e *Engine) Statistics() broker.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := broker.Statistics{Balance: e.balance}
	if len(e.history) == 0 {
		return stats
	}

	var winSum, lossSum float64
	for _, t := range e.history {
		stats.TotalPL += t.PL
		if t.PL > 0 {
			stats.WinningTrades++
			winSum += t.PL
		} else {
			stats.LosingTrades++
			lossSum += t.PL
		}
	}

	stats.TotalTrades = len(e.history)
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	if stats.WinningTrades > 0 {
		stats.AverageWin = winSum / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = lossSum / float64(stats.LosingTrades)
	}
	return stats
}

func (e *Engine) unrealizedLocked(pos *broker.Position, price float64) float64 {
	return realizedPL(pos.Side, pos.EntryPrice, price, pos.Quantity, e.pointValue)
}

// realizedPL converts a price move into account currency:
// (exit - entry) x quantity x pointValue, sign inverted for shorts.
func realizedPL(side broker.Side, entry, exit float64, quantity int, pointValue float64) float64 {
	move := exit - entry
	if side == broker.Sell {
		move = -move
	}
	return move * float64(quantity) * pointValue
}
