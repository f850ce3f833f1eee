package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTrends/internal/model"
)

func TestOutcomes(t *testing.T) {
	results := []model.Result{
		{Ref: model.SymbolRef{Raw: "NASDAQ:AAPL"}, Data: make([]model.OHLCV, 3)},
		{Ref: model.SymbolRef{Raw: "NASDAQ:MSFT"}, Data: make([]model.OHLCV, 2), Cached: true},
		{Ref: model.SymbolRef{Raw: "NASDAQ:META"}, Err: errors.New("Failed to fetch data for symbol META")},
	}
	got := Outcomes(results)
	assert.Equal(t, []SymbolOutcome{
		{Symbol: "NASDAQ:AAPL", Status: StatusFetched, Rows: 3},
		{Symbol: "NASDAQ:MSFT", Status: StatusCached, Rows: 2},
		{Symbol: "NASDAQ:META", Status: StatusError, Error: "Failed to fetch data for symbol META"},
	}, got)
}

func TestSQLiteRecorder_RecordRequest(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer r.Close()

	evt := &RequestEvent{
		ID:        "req-1",
		Endpoint:  "/api/getHistoricalData",
		StartDate: "2024-06-01",
		Duration:  120 * time.Millisecond,
		Outcomes: []SymbolOutcome{
			{Symbol: "NASDAQ:AAPL", Status: StatusFetched, Rows: 3},
			{Symbol: "NASDAQ:META", Status: StatusError, Error: "boom"},
		},
	}
	require.NoError(t, r.RecordRequest(evt))

	var symbols, failed int
	var duration int64
	require.NoError(t, r.db.QueryRow(`SELECT symbols, failed, duration_ms FROM requests WHERE id = ?`, "req-1").
		Scan(&symbols, &failed, &duration))
	assert.Equal(t, 2, symbols)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int64(120), duration)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM request_symbols WHERE request_id = ?`, "req-1").Scan(&n))
	assert.Equal(t, 2, n)

	// duplicate id rolls back the whole event
	assert.Error(t, r.RecordRequest(evt))
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM request_symbols`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRequest(&RequestEvent{}))
	assert.NoError(t, rec.Close())
}
