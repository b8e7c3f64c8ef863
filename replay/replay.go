package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"orbot/bot"
	"orbot/market"
)

// CSVFeed reads bars from a CSV file.
//
// Expected columns:
// time,open,high,low,close,volume
// Header allowed; volume may be empty and defaults to zero.
type CSVFeed struct {
	f *os.File
	r *csv.Reader

	sawFirst bool
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return &CSVFeed{f: f, r: r}, nil
}

func (f *CSVFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next bar. The second return is false at EOF.
func (f *CSVFeed) Next() (market.Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		bar, ok, err := parseBarRow(row)
		if err != nil {
			return market.Bar{}, false, err
		}
		if !ok {
			continue
		}
		return bar, true, nil
	}
}

func parseBarRow(row []string) (market.Bar, bool, error) {
	if len(row) < 5 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Bar{}, false, err
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad price %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	var volume int64
	if len(row) >= 6 {
		vs := strings.TrimSpace(row[5])
		if vs != "" {
			volume, err = strconv.ParseInt(vs, 10, 64)
			if err != nil {
				return market.Bar{}, false, fmt.Errorf("bad volume %q: %w", row[5], err)
			}
		}
	}

	bar := market.Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}
	if !bar.Valid() {
		return market.Bar{}, false, fmt.Errorf("invalid bar at %s", ts)
	}
	return bar, true, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

// Run feeds every bar from the file into the engine in order. The engine
// must already be started. A not-running engine or a bad row stops the run.
func Run(ctx context.Context, path string, b *bot.Bot, log *zap.Logger) (int, error) {
	feed, err := NewCSVFeed(path)
	if err != nil {
		return 0, fmt.Errorf("replay: %w", err)
	}
	defer feed.Close()

	fed := 0
	for {
		if err := ctx.Err(); err != nil {
			return fed, err
		}

		bar, ok, err := feed.Next()
		if err != nil {
			return fed, fmt.Errorf("replay row %d: %w", fed+1, err)
		}
		if !ok {
			break
		}
		if err := b.OnBar(ctx, bar); err != nil {
			return fed, fmt.Errorf("replay: %w", err)
		}
		fed++
	}

	log.Info("replay finished", zap.Int("bars", fed), zap.String("file", path))
	return fed, nil
}
