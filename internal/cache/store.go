// Package cache keeps fetched history per canonical symbol for the lifetime
// of the process and decides which symbols of a batch need a fresh fetch.
package cache

import (
	"sort"
	"sync"

	"StockTrends/internal/model"
)

// Entry holds records known to be complete from EarliestDate forward.
type Entry struct {
	EarliestDate string
	Records      []model.OHLCV
}

// Partition is the split of one batch against the cache.
type Partition struct {
	Covered    map[string][]model.OHLCV
	NeedsFetch []string
}

// Store is a process-scoped symbol → Entry map. Entries are replaced
// wholesale, never merged.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Partition splits symbols into those whose entry covers startDate and those
// that must be fetched. Dates are canonical YYYY-MM-DD, so string order is date order.
func (s *Store) Partition(symbols []string, startDate string) Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Partition{Covered: make(map[string][]model.OHLCV)}
	for _, sym := range symbols {
		if e, ok := s.entries[sym]; ok && e.EarliestDate <= startDate {
			p.Covered[sym] = e.Records
			continue
		}
		p.NeedsFetch = append(p.NeedsFetch, sym)
	}
	return p
}

// Put overwrites the entry for symbol with records fetched from startDate.
func (s *Store) Put(symbol, startDate string, records []model.OHLCV) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = Entry{EarliestDate: startDate, Records: records}
}

// Get returns the entry for symbol.
func (s *Store) Get(symbol string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[symbol]
	return e, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns symbol → EarliestDate for every entry, keys sorted.
func (s *Store) Snapshot() []Coverage {
	s.mu.RLock()
	out := make([]Coverage, 0, len(s.entries))
	for sym, e := range s.entries {
		out = append(out, Coverage{Symbol: sym, EarliestDate: e.EarliestDate})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Coverage names a cached symbol and the date its data starts from.
type Coverage struct {
	Symbol       string
	EarliestDate string
}
