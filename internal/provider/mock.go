package provider

import (
	"context"
	"sync"

	"StockTrends/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It is safe for concurrent use.
type MockFetcher struct {
	Bars map[string][]model.OHLCV
	Errs map[string]error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Fetch invocation.
type MockCall struct {
	Symbol    string
	StartDate string
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Bars: make(map[string][]model.OHLCV),
		Errs: make(map[string]error),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(ctx context.Context, symbol, startDate string) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Symbol: symbol, StartDate: startDate})
	bars, hasBars := m.Bars[symbol]
	err := m.Errs[symbol]
	m.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, newError(m.Name(), symbol, "Failed to fetch data for symbol "+symbol, ctxErr)
	}
	if err != nil {
		return nil, err
	}
	if !hasBars || len(bars) == 0 {
		return nil, newError(m.Name(), symbol, "No data returned for symbol "+symbol, ErrEmptyResult)
	}
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return out, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockFetcher) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
