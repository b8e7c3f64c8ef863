package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var closeTime = time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC)

func sampleTrade() TradeRecord {
	return TradeRecord{
		TradeID:    "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Symbol:     "ES",
		Side:       "buy",
		Quantity:   2,
		EntryPrice: 5011,
		ExitPrice:  5033,
		RealizedPL: 2200,
		CloseTime:  closeTime,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	balancePath := filepath.Join(dir, "balance.csv")

	j, err := NewCSV(tradesPath, balancePath)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(sampleTrade()))
	require.NoError(t, j.RecordBalance(BalanceSnapshot{
		Time:    closeTime,
		Balance: 102200,
		DailyPL: 2200,
	}))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, []string{"trade_id", "symbol", "side", "quantity",
		"entry_price", "exit_price", "realized_pl", "close_time"}, trades[0])
	assert.Equal(t, []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV", "ES", "buy", "2",
		"5011.00", "5033.00", "2200.00", "2026-03-02T09:45:00Z"}, trades[1])

	balance := readCSV(t, balancePath)
	require.Len(t, balance, 2)
	assert.Equal(t, []string{"2026-03-02T09:45:00Z", "102200.00", "2200.00"}, balance[1])
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "trades.csv"), "balance.csv")
	assert.Error(t, err)
}
