package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiingoFetcher_Fetch(t *testing.T) {
	var gotPath, gotStart, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("startDate")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[
			{"date":"2024-06-03T00:00:00.000Z","open":192.9,"high":194.99,"low":192.52,"close":194.03,"volume":50080539},
			{"date":"2024-06-04T00:00:00.000Z","open":194.64,"high":null,"low":"bad","close":194.35,"volume":47471445}
		]`))
	}))
	defer srv.Close()

	f := NewTiingoFetcher(srv.URL, "secret", "")
	bars, err := f.Fetch(context.Background(), "AAPL", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "/tiingo/daily/AAPL/prices", gotPath)
	assert.Equal(t, "2024-06-01", gotStart)
	assert.Equal(t, "Token secret", gotAuth)

	assert.Equal(t, "2024-06-03", bars[0].Date)
	assert.InDelta(t, 194.03, bars[0].Close.Float64, 1e-9)
	assert.Equal(t, int64(50080539), bars[0].Volume.Int64)

	assert.False(t, bars[1].High.Valid)
	assert.False(t, bars[1].Low.Valid)
	assert.True(t, bars[1].Close.Valid)
}

func TestTiingoFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Invalid token."}`, ErrStatus},
		{"object instead of array", http.StatusOK, `{"detail":"Not found."}`, ErrUnexpectedPayload},
		{"empty array", http.StatusOK, `[]`, ErrEmptyResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewTiingoFetcher(srv.URL, "t", "").Fetch(context.Background(), "ZZZZ", "2024-06-01")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, NameTiingo, perr.Provider)
		})
	}
}

func TestNew(t *testing.T) {
	f, err := New(NameNasdaq, Options{})
	require.NoError(t, err)
	assert.Equal(t, NameNasdaq, f.Name())

	_, err = New(NameTiingo, Options{})
	assert.Error(t, err)

	f, err = New(NameTiingo, Options{TiingoToken: "x"})
	require.NoError(t, err)
	assert.Equal(t, NameTiingo, f.Name())

	_, err = New("yahoo", Options{})
	assert.Error(t, err)
}
