package strategy

import (
	"time"

	"go.uber.org/zap"

	"orbot/config"
	"orbot/market"
)

// OpeningRange is the high/low band observed during the first minutes of the
// session. Once Calculated is set the values are latched for the day.
type OpeningRange struct {
	High       float64
	Low        float64
	Start      time.Time
	End        time.Time
	Calculated bool
}

func (r OpeningRange) Range() float64 {
	if !r.Calculated {
		return 0
	}
	return r.High - r.Low
}

func (r OpeningRange) Midpoint() float64 {
	if !r.Calculated {
		return 0
	}
	return (r.High + r.Low) / 2
}

// AboveHigh reports whether price cleared the range high by more than buffer.
func (r OpeningRange) AboveHigh(price, buffer float64) bool {
	return r.Calculated && price > r.High+buffer
}

// BelowLow reports whether price cleared the range low by more than buffer.
func (r OpeningRange) BelowLow(price, buffer float64) bool {
	return r.Calculated && price < r.Low-buffer
}

// RangeCalculator derives the opening range from the bar window. It computes
// at most once per day; failures before the window has data are recoverable
// and retried on the next bar.
type RangeCalculator struct {
	window      *market.Window
	minutes     int
	sessionOpen config.ClockTime
	log         *zap.Logger

	rng OpeningRange
}

func NewRangeCalculator(w *market.Window, minutes int, sessionOpen config.ClockTime, log *zap.Logger) *RangeCalculator {
	return &RangeCalculator{
		window:      w,
		minutes:     minutes,
		sessionOpen: sessionOpen,
		log:         log,
	}
}

// Calculate latches the opening range once now has passed the end of the
// opening window. It returns false while not ready; an empty opening window
// logs a warning and stays not-ready so the next bar retries.
func (c *RangeCalculator) Calculate(now time.Time) bool {
	if c.rng.Calculated {
		return true
	}

	open := c.sessionOpen.On(now)
	if now.Before(open) {
		return false
	}

	end := open.Add(time.Duration(c.minutes) * time.Minute)
	if now.Before(end) {
		return false
	}

	// The opening window is inclusive of the bar stamped at end, so a
	// 5-minute range over a 09:30 open covers the 09:30-09:35 bars.
	high, low, ok := c.window.HighLow(open, end)
	if !ok {
		c.log.Warn("no bars in opening range window",
			zap.Time("open", open), zap.Time("end", end))
		return false
	}

	c.rng = OpeningRange{
		High:       high,
		Low:        low,
		Start:      open,
		End:        end,
		Calculated: true,
	}

	c.log.Info("opening range calculated",
		zap.Float64("high", high),
		zap.Float64("low", low),
		zap.Float64("range", c.rng.Range()))
	return true
}

// Range returns a copy of the current opening range state.
func (c *RangeCalculator) Range() OpeningRange {
	return c.rng
}

// Reset clears the range for a new trading day.
func (c *RangeCalculator) Reset() {
	c.rng = OpeningRange{}
	c.log.Debug("opening range reset")
}
