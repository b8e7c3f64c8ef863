package calendar

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// newsDay pins a high-impact release to a calendar date.
type newsDay struct {
	Month       time.Month
	Day         int
	Description string
}

// Scheduled 2026 releases that move index futures: FOMC meeting days and the
// monthly employment report. Update yearly.
var newsDays2026 = []newsDay{
	{time.January, 28, "FOMC Meeting"},
	{time.January, 29, "FOMC Meeting"},
	{time.March, 17, "FOMC Meeting"},
	{time.March, 18, "FOMC Meeting"},
	{time.April, 28, "FOMC Meeting"},
	{time.April, 29, "FOMC Meeting"},
	{time.June, 16, "FOMC Meeting"},
	{time.June, 17, "FOMC Meeting"},
	{time.July, 28, "FOMC Meeting"},
	{time.July, 29, "FOMC Meeting"},
	{time.September, 22, "FOMC Meeting"},
	{time.September, 23, "FOMC Meeting"},
	{time.November, 3, "FOMC Meeting"},
	{time.November, 4, "FOMC Meeting"},
	{time.December, 15, "FOMC Meeting"},
	{time.December, 16, "FOMC Meeting"},

	{time.January, 9, "NFP"},
	{time.February, 6, "NFP"},
	{time.March, 6, "NFP"},
	{time.April, 3, "NFP"},
	{time.May, 8, "NFP"},
	{time.June, 5, "NFP"},
	{time.July, 3, "NFP"},
	{time.August, 7, "NFP"},
	{time.September, 4, "NFP"},
	{time.October, 2, "NFP"},
	{time.November, 6, "NFP"},
	{time.December, 4, "NFP"},
}

// NewsFilter gates trading on high-impact news days. It is a pure function
// of calendar date; the engine consults it once per day at rollover.
type NewsFilter struct {
	enabled  bool
	log      *zap.Logger
	excluded map[string]string // date key -> description
}

func NewNewsFilter(enabled bool, log *zap.Logger) *NewsFilter {
	f := &NewsFilter{
		enabled:  enabled,
		log:      log,
		excluded: make(map[string]string),
	}
	for _, d := range newsDays2026 {
		key := time.Date(2026, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		f.excluded[key] = d.Description
	}
	return f
}

// IsTradingAllowed reports whether the given calendar day is clear of
// excluded news events.
func (f *NewsFilter) IsTradingAllowed(day time.Time) (bool, string) {
	if !f.enabled {
		return true, "news filter disabled"
	}

	if desc, ok := f.excluded[day.Format(dateLayout)]; ok {
		reason := "high-impact news day: " + desc
		f.log.Warn("trading not allowed", zap.String("reason", reason))
		return false, reason
	}
	return true, "no major news events"
}

// Add excludes a custom date.
func (f *NewsFilter) Add(day time.Time, description string) {
	if description == "" {
		description = "high-impact news"
	}
	f.excluded[day.Format(dateLayout)] = description
	f.log.Info("news date added",
		zap.String("date", day.Format(dateLayout)),
		zap.String("description", description))
}

// Remove clears an exclusion.
func (f *NewsFilter) Remove(day time.Time) {
	delete(f.excluded, day.Format(dateLayout))
}

// Next returns the first excluded date after the given day.
func (f *NewsFilter) Next(after time.Time) (time.Time, string, bool) {
	keys := make([]string, 0, len(f.excluded))
	for k := range f.excluded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cutoff := after.Format(dateLayout)
	for _, k := range keys {
		if k > cutoff {
			d, err := time.Parse(dateLayout, k)
			if err != nil {
				continue
			}
			return d, f.excluded[k], true
		}
	}
	return time.Time{}, "", false
}

// ExcludedDates lists all excluded dates in order.
func (f *NewsFilter) ExcludedDates() []time.Time {
	keys := make([]string, 0, len(f.excluded))
	for k := range f.excluded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		if d, err := time.Parse(dateLayout, k); err == nil {
			out = append(out, d)
		}
	}
	return out
}
