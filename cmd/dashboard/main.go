package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/crime-forecast-dashboard/internal/adapter/http"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/config"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/dataset"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/forecast"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/observability"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source, err := dataset.Open(cfg)
	if err != nil {
		logger.Error("failed to open dataset", "error", err)
		os.Exit(1)
	}
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}

	fitter := forecast.NewAdditiveFitter(cfg.FourierOrder, cfg.IntervalWidth)
	engine := forecast.NewEngine(fitter, cfg.CacheSize, cfg.FitTimeout, logger, metrics)
	p := pipeline.New(source, engine, cfg.DefaultHorizon, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A dataset that cannot be loaded is fatal at startup.
	table, err := p.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("dataset loaded", "source", table.Source, "records", len(table.Records))

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
