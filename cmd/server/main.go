package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockTrends/internal/api"
	"StockTrends/internal/auth"
	"StockTrends/internal/cache"
	"StockTrends/internal/collector"
	"StockTrends/internal/config"
	"StockTrends/internal/palette"
	"StockTrends/internal/provider"
	"StockTrends/internal/recorder"
	"StockTrends/internal/scheduler"
	"StockTrends/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("load .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Msg("StockTrends starting...")

	// Init fetcher
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
	log.Info().Str("provider", fetcher.Name()).Msg("data source selected")

	var store *cache.Store
	if cfg.Cache.Enabled {
		store = cache.New()
	}
	col := collector.NewCollector(fetcher, store, cfg.Provider.Timeout)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	h := api.NewHandler(col, api.Options{
		ProviderName:     fetcher.Name(),
		Cache:            store,
		Recorder:         rec,
		Theme:            palette.Theme(cfg.Chart.Theme),
		MaxColorAttempts: cfg.Chart.MaxColorAttempts,
		AllowedOrigin:    cfg.Server.AllowedOrigin,
	})
	var guards []func(http.Handler) http.Handler
	if cfg.AuthEnabled() {
		verifier := auth.NewHTTPVerifier(cfg.Auth.VerifyURL, cfg.Proxy)
		guards = append(guards, func(next http.Handler) http.Handler {
			return auth.Middleware(verifier, next)
		})
		log.Info().Str("verify_url", cfg.Auth.VerifyURL).Msg("bearer auth enabled")
	}
	handler := h.Routes(guards...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Cache.RefreshCron != "" {
		sched := scheduler.NewScheduler(ctx, col)
		if err := sched.Register(cfg.Cache.RefreshCron); err != nil {
			log.Fatal().Err(err).Msg("register refresh task")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.NewServer(cfg.Server.Port, handler)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("StockTrends stopped")
}

func setupLogger(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}
