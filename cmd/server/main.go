package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"quotegateway/internal/aggregate"
	"quotegateway/internal/api"
	"quotegateway/internal/config"
	"quotegateway/internal/httpx"
	"quotegateway/internal/logging"
	"quotegateway/internal/metrics"
	"quotegateway/internal/provider/factory"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := logging.New("info", "json", os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	adapters, err := factory.NewFromConfig(cfg, httpClient)
	if err != nil {
		return err
	}
	warnMissingKey(log, "stocks", adapters.Stocks.Name(), adapters.Stocks.CheckCredential())
	warnMissingKey(log, "commodities", adapters.Commodities.Name(), adapters.Commodities.CheckCredential())

	m := metrics.New()
	s := &api.Server{
		Quotes: &aggregate.Aggregator{
			Observer: aggregate.MultiObserver{logging.Observer{Log: log}, m},
		},
		Stocks:      adapters.Stocks,
		Commodities: adapters.Commodities,
		Log:         log,
		Metrics:     m,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("stocks", adapters.Stocks.Name()).
			Str("commodities", adapters.Commodities.Name()).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// warnMissingKey logs at startup; requests still answer with the configured
// error body.
func warnMissingKey(log zerolog.Logger, route, name string, err error) {
	if err != nil {
		log.Warn().Str("route", route).Str("provider", name).Msg("API key not configured")
	}
}
