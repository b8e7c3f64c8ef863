package market

import "time"

// DefaultCapacity is enough to cover a full trading day of minute bars with
// room for the previous session's tail.
const DefaultCapacity = 1000

// Window is a fixed-capacity, time-ordered buffer of bars for one symbol.
// When full, appending a bar evicts the oldest. It answers the range and
// average queries the opening-range and breakout logic need.
//
// Window is not safe for concurrent use; the engine serializes all access.
type Window struct {
	capacity int
	bars     []Bar
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{capacity: capacity}
}

// Add appends a bar, evicting the oldest when the window is at capacity.
func (w *Window) Add(b Bar) {
	if len(w.bars) == w.capacity {
		copy(w.bars, w.bars[1:])
		w.bars = w.bars[:len(w.bars)-1]
	}
	w.bars = append(w.bars, b)
}

func (w *Window) Len() int { return len(w.bars) }

// Last returns the most recent bar, if any.
func (w *Window) Last() (Bar, bool) {
	if len(w.bars) == 0 {
		return Bar{}, false
	}
	return w.bars[len(w.bars)-1], true
}

// Bars returns all bars with start <= bar time <= end, oldest first.
func (w *Window) Bars(start, end time.Time) []Bar {
	var out []Bar
	for _, b := range w.bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// HighLow returns the highest high and lowest low over [start, end].
// ok is false when no bars fall in the interval.
func (w *Window) HighLow(start, end time.Time) (high, low float64, ok bool) {
	for _, b := range w.bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		if !ok {
			high, low, ok = b.High, b.Low, true
			continue
		}
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, ok
}

// AverageVolume returns the mean volume over the last lookback bars, or over
// the whole window when it holds fewer. Returns 0 with no history.
func (w *Window) AverageVolume(lookback int) float64 {
	if len(w.bars) == 0 || lookback <= 0 {
		return 0
	}
	if lookback > len(w.bars) {
		lookback = len(w.bars)
	}
	var total int64
	for _, b := range w.bars[len(w.bars)-lookback:] {
		total += b.Volume
	}
	return float64(total) / float64(lookback)
}

// TotalVolume sums volume over [start, end].
func (w *Window) TotalVolume(start, end time.Time) int64 {
	var total int64
	for _, b := range w.bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		total += b.Volume
	}
	return total
}

// Clear drops all stored bars.
func (w *Window) Clear() {
	w.bars = w.bars[:0]
}
