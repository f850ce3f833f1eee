// Package provider fetches daily OHLCV history from a remote data source and
// maps it into model.OHLCV. Exactly one Fetcher is active per process.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StockTrends/internal/model"
)

// Fetcher defines the interface for fetching historical market data.
type Fetcher interface {
	// Fetch returns daily bars for symbol from startDate (YYYY-MM-DD) onward,
	// in whatever order the provider sends them.
	Fetch(ctx context.Context, symbol, startDate string) ([]model.OHLCV, error)
	Name() string
}

const (
	NameNasdaq = "nasdaq"
	NameTiingo = "tiingo"
)

var (
	ErrStatus            = errors.New("unexpected status")
	ErrUnexpectedPayload = errors.New("unexpected payload shape")
	ErrEmptyResult       = errors.New("empty result")
)

// Error is a per-symbol fetch failure. Error() is safe to show to clients;
// the underlying cause is available through Unwrap.
type Error struct {
	Provider string
	Symbol   string
	Reason   string
	Err      error
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Err }

func newError(provider, symbol, reason string, err error) *Error {
	return &Error{Provider: provider, Symbol: symbol, Reason: reason, Err: err}
}

// Options configures the concrete fetchers built by New.
type Options struct {
	NasdaqBaseURL string
	TiingoBaseURL string
	TiingoToken   string
	RowLimit      int
	Proxy         string
}

// New builds the fetcher named by name.
func New(name string, o Options) (Fetcher, error) {
	switch name {
	case NameNasdaq, "":
		return NewNasdaqFetcher(o.NasdaqBaseURL, o.RowLimit, o.Proxy), nil
	case NameTiingo:
		if o.TiingoToken == "" {
			return nil, fmt.Errorf("tiingo: api token is required")
		}
		return NewTiingoFetcher(o.TiingoBaseURL, o.TiingoToken, o.Proxy), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
