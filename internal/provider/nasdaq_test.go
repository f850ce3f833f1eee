package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nasdaqBody = `{
  "data": {
    "symbol": "AAPL",
    "tradesTable": {
      "rows": [
        {"date": "06/04/2024", "close": "$194.35", "volume": "47,471,450", "open": "$194.64", "high": "$195.32", "low": "$193.03"},
        {"date": "06/03/2024", "close": "$194.03", "volume": "50,080,540", "open": "N/A", "high": "$194.99", "low": "$192.52"}
      ]
    }
  },
  "status": {"rCode": 200}
}`

func newNasdaqServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r.Clone(context.Background())
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestNasdaqFetcher_Fetch(t *testing.T) {
	srv, req := newNasdaqServer(t, http.StatusOK, nasdaqBody)
	f := NewNasdaqFetcher(srv.URL, 0, "")

	bars, err := f.Fetch(context.Background(), "AAPL", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "/api/quote/AAPL/historical", req.URL.Path)
	assert.Equal(t, "2024-06-01", req.URL.Query().Get("fromdate"))
	assert.Equal(t, "stocks", req.URL.Query().Get("assetclass"))
	assert.Equal(t, "400", req.URL.Query().Get("limit"))
	assert.Equal(t, "Mozilla/5.0", req.Header.Get("User-Agent"))

	assert.Equal(t, "2024-06-04", bars[0].Date)
	assert.InDelta(t, 194.35, bars[0].Close.Float64, 1e-9)
	assert.Equal(t, int64(47471450), bars[0].Volume.Int64)

	// a bad field nulls only that field
	assert.Equal(t, "2024-06-03", bars[1].Date)
	assert.False(t, bars[1].Open.Valid)
	assert.True(t, bars[1].Close.Valid)
}

func TestNasdaqFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"non-200 status", http.StatusForbidden, `denied`, ErrStatus},
		{"missing data", http.StatusOK, `{"data": null, "status": {"rCode": 400}}`, ErrUnexpectedPayload},
		{"missing rows", http.StatusOK, `{"data": {"tradesTable": {"rows": null}}}`, ErrUnexpectedPayload},
		{"not json", http.StatusOK, `<html>`, ErrUnexpectedPayload},
		{"empty rows", http.StatusOK, `{"data": {"tradesTable": {"rows": []}}}`, ErrEmptyResult},
		{"only bad dates", http.StatusOK, `{"data": {"tradesTable": {"rows": [{"date": "someday"}]}}}`, ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newNasdaqServer(t, tt.status, tt.body)
			f := NewNasdaqFetcher(srv.URL, 10, "")

			bars, err := f.Fetch(context.Background(), "META", "2024-06-01")
			require.Error(t, err)
			assert.Nil(t, bars)
			assert.ErrorIs(t, err, tt.target)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "META", perr.Symbol)
			assert.Equal(t, NameNasdaq, perr.Provider)
			assert.Contains(t, perr.Error(), "META")
		})
	}
}

func TestNasdaqFetcher_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewNasdaqFetcher(srv.URL, 0, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, "AAPL", "2024-06-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "Failed to fetch data for symbol AAPL", err.Error())
}
