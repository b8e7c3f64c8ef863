package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(t *testing.T, month time.Month, d int) time.Time {
	t.Helper()
	return time.Date(2026, month, d, 10, 15, 0, 0, time.UTC)
}

func TestNewsDaysBlocked(t *testing.T) {
	t.Parallel()

	f := NewNewsFilter(true, zap.NewNop())

	ok, reason := f.IsTradingAllowed(day(t, time.March, 18))
	assert.False(t, ok)
	assert.Contains(t, reason, "FOMC")

	ok, reason = f.IsTradingAllowed(day(t, time.February, 6))
	assert.False(t, ok)
	assert.Contains(t, reason, "NFP")

	ok, _ = f.IsTradingAllowed(day(t, time.March, 2))
	assert.True(t, ok)
}

func TestDisabledFilterAllowsEverything(t *testing.T) {
	t.Parallel()

	f := NewNewsFilter(false, zap.NewNop())
	ok, _ := f.IsTradingAllowed(day(t, time.March, 18))
	assert.True(t, ok)
}

func TestAddAndRemove(t *testing.T) {
	t.Parallel()

	f := NewNewsFilter(true, zap.NewNop())
	custom := day(t, time.May, 20)

	f.Add(custom, "CPI release")
	ok, reason := f.IsTradingAllowed(custom)
	assert.False(t, ok)
	assert.Contains(t, reason, "CPI")

	f.Remove(custom)
	ok, _ = f.IsTradingAllowed(custom)
	assert.True(t, ok)
}

func TestNext(t *testing.T) {
	t.Parallel()

	f := NewNewsFilter(true, zap.NewNop())

	next, desc, ok := f.Next(day(t, time.March, 7))
	require.True(t, ok)
	assert.Equal(t, time.March, next.Month())
	assert.Equal(t, 17, next.Day())
	assert.Equal(t, "FOMC Meeting", desc)

	// Past the last scheduled date there is nothing left.
	_, _, ok = f.Next(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestExcludedDatesSorted(t *testing.T) {
	t.Parallel()

	dates := NewNewsFilter(true, zap.NewNop()).ExcludedDates()
	require.NotEmpty(t, dates)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i-1].Before(dates[i]))
	}
}
