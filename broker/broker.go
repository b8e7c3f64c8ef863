package broker

import (
	"context"
	"time"
)

// Side is the direction of an order or position.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType identifies how an order is priced. The engine only submits
// market orders; stops and targets are synthetic, evaluated bar by bar.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
	Stop   OrderType = "stop"
)

// Status is the lifecycle state of an order.
type Status string

const (
	Pending   Status = "pending"
	Submitted Status = "submitted"
	Filled    Status = "filled"
	Cancelled Status = "cancelled"
	Rejected  Status = "rejected"
)

// Order is a trading order. The broker assigns ID and advances Status;
// callers must treat an order as filled only when Status reports Filled.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Quantity    int
	Type        OrderType
	Price       float64 // limit/stop price; unused for market orders
	Status      Status
	FilledQty   int
	FilledPrice float64
	SubmitTime  time.Time
}

// Position is the broker's record of an open position. It is the source of
// truth for fills; the order manager's bracket state defers to it.
type Position struct {
	Symbol       string
	Side         Side
	Quantity     int
	EntryPrice   float64
	EntryTime    time.Time
	UnrealizedPL float64
}

// TradeRecord is one closed round trip, appended exactly once per close.
type TradeRecord struct {
	ID         string
	Symbol     string
	Side       Side
	Quantity   int
	EntryPrice float64
	ExitPrice  float64
	PL         float64
	CloseTime  time.Time
}

// Statistics aggregates the full trade history. It is recomputed on demand
// from the records, never maintained incrementally.
type Statistics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent of trades with positive P&L
	TotalPL       float64
	AverageWin    float64
	AverageLoss   float64
	Balance       float64
}

// Broker is the fixed execution interface. Every implementation must satisfy
// it in full; the risk and order managers never probe for optional
// capabilities such as daily P&L or trade counts.
type Broker interface {
	Connect() error
	Disconnect()
	Connected() bool

	// UpdatePrice records the last traded price for a symbol and revalues
	// any open position against it.
	UpdatePrice(symbol string, price float64, at time.Time)

	// SubmitOrder accepts the order, assigns its ID, and advances its
	// status in place. Market orders fill synchronously when a price is
	// known; with no price the order stays submitted, not filled.
	SubmitOrder(ctx context.Context, o *Order) error
	CancelOrder(id string) error
	OrderStatus(id string) Status

	Position(symbol string) (Position, bool)
	Positions() []Position

	Balance() float64
	// DailyPL is realized P&L since the daily reset plus unrealized P&L of
	// open positions.
	DailyPL() float64
	TradesToday() int
	ResetDailyStats()

	TradeHistory() []TradeRecord
	Statistics() Statistics
}
