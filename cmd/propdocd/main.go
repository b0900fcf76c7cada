package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/propdocs/extractor/internal/async"
	"github.com/propdocs/extractor/internal/common"
	"github.com/propdocs/extractor/internal/export"
	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/observability/logging"
	"github.com/propdocs/extractor/internal/observability/metrics"
	"github.com/propdocs/extractor/internal/pipeline"
	"github.com/propdocs/extractor/internal/repository"
	"github.com/propdocs/extractor/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := logging.NewJSONLogger("propdocd", cfg.Server.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}
	if err := store.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		logger.Error("store health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("document store ready")

	m := metrics.NewPipelineMetrics("propdocd")
	docsRepo := repository.NewDocumentRepository(store, logger)
	proc := pipeline.NewProcessor(logger, docsRepo, extract.NewPipeline(logger), m)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)
	exporter := export.NewService(docsRepo, cfg.Export.SheetName, logger)

	srv := server.New(logger, docsRepo, queue, proc, exporter, m, func(ctx context.Context) error {
		return store.HealthCheck(ctx, cfg.Database.DialTimeout)
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
