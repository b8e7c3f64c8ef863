package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"orbot/bot"
	"orbot/market"
	"orbot/strategy"
)

// Simulator drives the engine through a synthetic trading day: an opening
// range, a breakout with a volume spike, then a drift toward the bracket
// target. It exists to exercise the whole pipeline without a data feed.
type Simulator struct {
	bot *bot.Bot
	log *zap.Logger
	rng *rand.Rand

	price  float64
	orHigh float64
	orLow  float64
}

func New(b *bot.Bot, startPrice float64, seed int64, log *zap.Logger) *Simulator {
	return &Simulator{
		bot:   b,
		log:   log,
		rng:   rand.New(rand.NewSource(seed)),
		price: startPrice,
	}
}

// RunFullDay simulates one session starting at the given session open time.
// The engine must already be started.
func (s *Simulator) RunFullDay(ctx context.Context, open time.Time) error {
	s.log.Info("starting full day simulation",
		zap.Float64("start_price", s.price), zap.Time("open", open))

	now, err := s.openingRange(ctx, open, 5)
	if err != nil {
		return err
	}

	direction := strategy.Bullish
	if s.rng.Intn(2) == 1 {
		direction = strategy.Bearish
	}
	now, err = s.breakout(ctx, now, direction)
	if err != nil {
		return err
	}

	if info := s.bot.Status().Position; info != nil {
		if _, err := s.driftToward(ctx, now, info.TargetPrice); err != nil {
			return err
		}
	}

	stats := s.bot.Statistics()
	s.log.Info("simulation complete",
		zap.Int("total_trades", stats.TotalTrades),
		zap.Float64("win_rate", stats.WinRate),
		zap.Float64("total_pl", stats.TotalPL))
	for i, trade := range s.bot.TradeHistory() {
		s.log.Info("trade",
			zap.Int("n", i+1),
			zap.String("side", string(trade.Side)),
			zap.Float64("entry", trade.EntryPrice),
			zap.Float64("exit", trade.ExitPrice),
			zap.Float64("pl", trade.PL))
	}
	return nil
}

// openingRange emits or_minutes bars trading inside a 3-8 point band around
// the start price, with moderate volume.
func (s *Simulator) openingRange(ctx context.Context, now time.Time, minutes int) (time.Time, error) {
	band := 3 + s.rng.Float64()*5
	s.orHigh = s.price + band/2
	s.orLow = s.price - band/2
	s.log.Info("generating opening range",
		zap.Float64("high", s.orHigh), zap.Float64("low", s.orLow))

	for i := 0; i < minutes; i++ {
		next := s.orLow + s.rng.Float64()*(s.orHigh-s.orLow)
		if err := s.emit(ctx, now, next, int64(500+s.rng.Intn(1000))); err != nil {
			return now, err
		}
		now = now.Add(time.Minute)
	}
	return now, nil
}

// breakout walks the price out of the band, spiking volume once the close
// trades beyond the extreme so the crossing bar always confirms.
func (s *Simulator) breakout(ctx context.Context, now time.Time, dir strategy.Direction) (time.Time, error) {
	var target float64
	if dir == strategy.Bullish {
		target = s.orHigh + 2 + s.rng.Float64()*3
	} else {
		target = s.orLow - 2 - s.rng.Float64()*3
	}
	s.log.Info("simulating breakout",
		zap.String("direction", string(dir)), zap.Float64("target", target))

	for i := 0; i < 10; i++ {
		next := s.price + (target-s.price)*0.3 + s.rng.Float64() - 0.5

		volume := int64(500 + s.rng.Intn(700))
		if s.beyondBand(next, dir) && s.bot.Status().Position == nil {
			// Heavy volume rides the push until the entry fills. The spike
			// dwarfs any rolling average the quiet bars can produce, so the
			// crossing bar always confirms.
			volume = int64(4000 + s.rng.Intn(1000))
		}
		if err := s.emit(ctx, now, next, volume); err != nil {
			return now, err
		}
		now = now.Add(time.Minute)
	}
	return now, nil
}

// beyondBand reports whether a close has left the opening band in the walk's
// direction. The margin covers the bar noise added on top of the band edges.
func (s *Simulator) beyondBand(price float64, dir strategy.Direction) bool {
	const margin = 1.0
	if dir == strategy.Bullish {
		return price > s.orHigh+margin
	}
	return price < s.orLow-margin
}

// driftToward moves the price toward the bracket target until the position
// closes or 15 bars pass.
func (s *Simulator) driftToward(ctx context.Context, now time.Time, target float64) (time.Time, error) {
	s.log.Info("moving toward target", zap.Float64("target", target))

	for i := 0; i < 15; i++ {
		next := s.price + (target-s.price)*0.2 + s.rng.Float64()*0.6 - 0.3
		if err := s.emit(ctx, now, next, int64(500+s.rng.Intn(700))); err != nil {
			return now, err
		}
		now = now.Add(time.Minute)

		if s.bot.Status().Position == nil {
			s.log.Info("position closed")
			break
		}
	}
	return now, nil
}

func (s *Simulator) emit(ctx context.Context, at time.Time, next float64, volume int64) error {
	high := next
	if s.price > high {
		high = s.price
	}
	low := next
	if s.price < low {
		low = s.price
	}
	bar := market.Bar{
		Time:   at,
		Open:   s.price,
		High:   high + s.rng.Float64()*0.5,
		Low:    low - s.rng.Float64()*0.5,
		Close:  next,
		Volume: volume,
	}
	s.price = next

	if err := s.bot.OnBar(ctx, bar); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	s.log.Info("bar",
		zap.String("at", at.Format("15:04")),
		zap.Float64("o", bar.Open), zap.Float64("h", bar.High),
		zap.Float64("l", bar.Low), zap.Float64("c", bar.Close),
		zap.Int64("v", bar.Volume))
	return nil
}
