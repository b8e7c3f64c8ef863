package market

import "time"

// Bar is a single OHLCV price bar at minute resolution. Bars are immutable
// once constructed; the timestamp carries the session timezone.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Valid reports whether the bar satisfies the OHLC ordering invariant:
// low <= open,close <= high and volume is non-negative.
func (b Bar) Valid() bool {
	if b.High < b.Low {
		return false
	}
	if b.Open < b.Low || b.Open > b.High {
		return false
	}
	if b.Close < b.Low || b.Close > b.High {
		return false
	}
	return b.Volume >= 0
}
