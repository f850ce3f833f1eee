/*
Trends fetches daily history for a batch of NASDAQ symbols and prints each
close series, relative to its first day, in the colour the chart API would
assign it.

Usage:

	go run ./cmd/trends -symbols=NASDAQ:AAPL,NASDAQ:MSFT -start=2024-06-01 -theme=dark
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/chart"
	"StockTrends/internal/collector"
	"StockTrends/internal/config"
	"StockTrends/internal/model"
	"StockTrends/internal/palette"
	"StockTrends/internal/provider"
	"StockTrends/internal/series"
	"StockTrends/internal/symbol"
)

var (
	symbols = flag.String("symbols", "NASDAQ:AAPL,NASDAQ:MSFT", "Comma-separated MARKET:SYMBOL list")
	start   = flag.String("start", "", "First day to include, yyyy-mm-dd")
	theme   = flag.String("theme", "", "light or dark; defaults to the configured theme")
	cfgPath = flag.String("config", "configs/config.yaml", "Path to the YAML config")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	_ = godotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	if *start == "" {
		log.Fatal().Msg("-start is required")
	}
	if _, err := model.ParseDate(*start); err != nil {
		log.Fatal().Err(err).Msg("invalid -start")
	}
	refs, err := symbol.Normalize(*symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -symbols")
	}

	th := palette.Theme(cfg.Chart.Theme)
	if *theme != "" {
		if th, err = palette.ParseTheme(*theme); err != nil {
			log.Fatal().Err(err).Msg("invalid -theme")
		}
	}

	fetcher, err := provider.New(cfg.Provider.Name, provider.Options{
		NasdaqBaseURL: cfg.Provider.NasdaqBaseURL,
		TiingoBaseURL: cfg.Provider.TiingoBaseURL,
		TiingoToken:   cfg.Provider.TiingoToken,
		RowLimit:      cfg.Provider.RowLimit,
		Proxy:         cfg.Proxy,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init provider")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	col := collector.NewCollector(fetcher, nil, cfg.Provider.Timeout)
	results := col.Collect(ctx, refs, *start)

	inputs := make([]series.Input, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Ref.Raw, r.Err)
			continue
		}
		inputs = append(inputs, series.Input{Label: r.Ref.Raw, Records: r.Data})
	}

	charts := chart.Build(inputs, *start, palette.NewGenerator(th, cfg.Chart.MaxColorAttempts, nil))
	render(os.Stdout, charts.Close.Datasets)
}
