package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"StockTrends/internal/cache"
	"StockTrends/internal/model"
	"StockTrends/internal/provider"
)

// Collector serves a batch of symbols from the cache where it covers the
// requested window and fetches the rest from the provider in parallel.
type Collector struct {
	Fetcher provider.Fetcher
	// Cache may be nil, in which case every symbol is fetched.
	Cache   *cache.Store
	Timeout time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher provider.Fetcher, store *cache.Store, timeout time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Cache: store, Timeout: timeout}
}

// Collect returns one Result per ref, in the order of refs. A failure for one
// symbol never affects the others.
func (c *Collector) Collect(ctx context.Context, refs []model.SymbolRef, startDate string) []model.Result {
	results := make([]model.Result, len(refs))
	pending := make([]int, 0, len(refs))

	if c.Cache != nil {
		keys := make([]string, len(refs))
		for i, ref := range refs {
			keys[i] = ref.Raw
		}
		part := c.Cache.Partition(keys, startDate)
		for i, ref := range refs {
			if recs, ok := part.Covered[ref.Raw]; ok {
				results[i] = model.Result{Ref: ref, Data: recs, Cached: true}
				continue
			}
			pending = append(pending, i)
		}
		log.Debug().Int("cached", len(part.Covered)).Int("fetch", len(part.NeedsFetch)).Str("start", startDate).Msg("cache partition")
	} else {
		for i := range refs {
			pending = append(pending, i)
		}
	}

	var wg sync.WaitGroup
	for _, i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.fetchOne(ctx, refs[i], startDate)
		}(i)
	}
	wg.Wait()
	return results
}

// fetchOne fetches a single symbol and, on success, replaces its cache entry.
func (c *Collector) fetchOne(ctx context.Context, ref model.SymbolRef, startDate string) (res model.Result) {
	res.Ref = ref
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("symbol", ref.Raw).Interface("panic", r).Msg("fetch panicked")
			res = model.Result{Ref: ref, Err: fmt.Errorf("internal error fetching %s", ref.Symbol)}
		}
	}()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	bars, err := c.Fetcher.Fetch(ctx, ref.Symbol, startDate)
	if err != nil {
		var perr *provider.Error
		if !errors.As(err, &perr) {
			err = &provider.Error{
				Provider: c.Fetcher.Name(),
				Symbol:   ref.Symbol,
				Reason:   "Failed to fetch data for symbol " + ref.Symbol,
				Err:      err,
			}
		}
		log.Warn().
			Str("provider", c.Fetcher.Name()).
			Str("symbol", ref.Raw).
			Err(err).
			AnErr("cause", errors.Unwrap(err)).
			Msg("fetch failed")
		res.Err = err
		return res
	}

	if c.Cache != nil {
		c.Cache.Put(ref.Raw, startDate, bars)
	}
	log.Debug().Str("symbol", ref.Raw).Int("rows", len(bars)).Dur("took", time.Since(start)).Msg("fetched")
	res.Data = bars
	return res
}

// Refresh re-fetches every cached symbol from its own earliest date and
// overwrites the entry. It returns the number of symbols refreshed and failed.
func (c *Collector) Refresh(ctx context.Context) (refreshed, failed int) {
	if c.Cache == nil {
		return 0, 0
	}

	entries := c.Cache.Snapshot()
	results := make([]model.Result, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		market, sym, ok := strings.Cut(e.Symbol, ":")
		if !ok {
			continue
		}
		ref := model.SymbolRef{Raw: e.Symbol, Market: market, Symbol: sym}
		wg.Add(1)
		go func(i int, ref model.SymbolRef, from string) {
			defer wg.Done()
			results[i] = c.fetchOne(ctx, ref, from)
		}(i, ref, e.EarliestDate)
	}
	wg.Wait()

	for _, r := range results {
		if r.Ref.Raw == "" {
			continue
		}
		if r.OK() {
			refreshed++
		} else {
			failed++
		}
	}
	return refreshed, failed
}
