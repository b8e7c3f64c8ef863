package strategy

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"orbot/market"
)

// Direction of a breakout.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Signal is an immutable breakout event. The detector emits at most one per
// trading day.
type Signal struct {
	Direction Direction
	Price     float64
	Time      time.Time
	Volume    int64
}

func (s Signal) String() string {
	return fmt.Sprintf("%s breakout at %.2f (volume %d)", s.Direction, s.Price, s.Volume)
}

// DefaultVolumeLookback is the bar count used for the rolling average volume.
const DefaultVolumeLookback = 20

// Detector watches bar closes against the latched opening range and emits at
// most one signal per day; it self-latches after the first emission.
type Detector struct {
	window *market.Window
	calc   *RangeCalculator
	log    *zap.Logger

	minBreakout      float64
	volumeMultiplier float64
	volumeLookback   int

	fired bool
	last  *Signal
}

func NewDetector(w *market.Window, calc *RangeCalculator, minBreakout, volumeMultiplier float64, log *zap.Logger) *Detector {
	return &Detector{
		window:           w,
		calc:             calc,
		log:              log,
		minBreakout:      minBreakout,
		volumeMultiplier: volumeMultiplier,
		volumeLookback:   DefaultVolumeLookback,
	}
}

// Check evaluates bar against the opening range. The bullish check runs
// first; a single bar can never produce both directions. Returns nil until a
// breakout fires, and always nil afterwards for the rest of the day.
func (d *Detector) Check(bar market.Bar, requireVolume bool) *Signal {
	rng := d.calc.Range()
	if !rng.Calculated || d.fired {
		return nil
	}

	var dir Direction
	switch {
	case rng.AboveHigh(bar.Close, d.minBreakout):
		dir = Bullish
	case rng.BelowLow(bar.Close, d.minBreakout):
		dir = Bearish
	default:
		return nil
	}

	if requireVolume && !d.confirmVolume(bar.Volume) {
		d.log.Debug("breakout without volume confirmation",
			zap.String("direction", string(dir)),
			zap.Int64("volume", bar.Volume),
			zap.Float64("average", d.window.AverageVolume(d.volumeLookback)))
		return nil
	}

	sig := &Signal{
		Direction: dir,
		Price:     bar.Close,
		Time:      bar.Time,
		Volume:    bar.Volume,
	}
	d.fired = true
	d.last = sig

	d.log.Info("breakout detected",
		zap.String("direction", string(dir)),
		zap.Float64("price", sig.Price),
		zap.Int64("volume", sig.Volume),
		zap.Float64("range_high", rng.High),
		zap.Float64("range_low", rng.Low))
	return sig
}

// confirmVolume requires volume >= rolling average x multiplier. With no
// volume history the confirmation is treated as satisfied.
func (d *Detector) confirmVolume(volume int64) bool {
	avg := d.window.AverageVolume(d.volumeLookback)
	if avg == 0 {
		d.log.Warn("no historical volume data, accepting breakout")
		return true
	}
	return float64(volume) >= avg*d.volumeMultiplier
}

// Fired reports whether today's signal has already been emitted.
func (d *Detector) Fired() bool { return d.fired }

// Last returns the most recent signal, or nil.
func (d *Detector) Last() *Signal { return d.last }

// Reset re-arms the detector for a new trading day.
func (d *Detector) Reset() {
	d.fired = false
	d.last = nil
	d.log.Debug("breakout detector reset")
}
