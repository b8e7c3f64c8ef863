package bot

import (
	"time"

	"orbot/broker"
	"orbot/config"
	"orbot/orders"
	"orbot/risk"
)

// RangeInfo is the JSON view of a calculated opening range.
type RangeInfo struct {
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Size     float64   `json:"size"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Snapshot is a point-in-time view of the engine, safe to serialize.
type Snapshot struct {
	State        State               `json:"state"`
	Running      bool                `json:"running"`
	Symbol       string              `json:"symbol"`
	CurrentDate  string              `json:"current_date,omitempty"`
	OpeningRange *RangeInfo          `json:"opening_range,omitempty"`
	Position     *orders.PositionInfo `json:"position,omitempty"`
	Risk         risk.Status         `json:"risk"`
	Balance      float64             `json:"balance"`
	DailyPL      float64             `json:"daily_pl"`
}

// Status reports the current engine state.
func (b *Bot) Status() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		State:       b.state,
		Running:     b.running,
		Symbol:      b.cfg.Trading.Symbol,
		CurrentDate: b.currentDate,
		Risk:        b.riskMgr.Status(),
		Balance:     b.broker.Balance(),
		DailyPL:     b.broker.DailyPL(),
	}

	if rng := b.ranges.Range(); rng.Calculated {
		snap.OpeningRange = &RangeInfo{
			High:  rng.High,
			Low:   rng.Low,
			Size:  rng.Range(),
			Start: rng.Start,
			End:   rng.End,
		}
	}
	if info, ok := b.orders.Info(); ok {
		snap.Position = &info
	}
	return snap
}

// Statistics reports aggregate trade statistics from the execution engine.
func (b *Bot) Statistics() broker.Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broker.Statistics()
}

// TradeHistory reports all completed trades in close order.
func (b *Bot) TradeHistory() []broker.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broker.TradeHistory()
}

// Config returns the engine's configuration.
func (b *Bot) Config() *config.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}
