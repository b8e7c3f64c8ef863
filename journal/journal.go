package journal

import "time"

// TradeRecord is one closed round trip as the journal stores it.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	Quantity   int
	EntryPrice float64
	ExitPrice  float64
	RealizedPL float64
	CloseTime  time.Time
}

// BalanceSnapshot captures account state after a close.
type BalanceSnapshot struct {
	Time    time.Time
	Balance float64
	DailyPL float64
}

// Journal persists closed trades and balance snapshots. The execution engine
// writes a trade record and a snapshot on every position close.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// Nop discards everything. Useful for tests and for running without a
// journal configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordBalance(BalanceSnapshot) error { return nil }
func (Nop) Close() error                        { return nil }
