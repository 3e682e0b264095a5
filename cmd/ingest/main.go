// Command ingest runs the signal CSV ingestion service: it scans the
// receiving directory on an interval (and on filesystem activity),
// validates candidate files and rows, publishes accepted rows to the
// Kafka sink topic, and archives processed files.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/xavier-xia-99/delphi-epidata/internal/adapter/fswatch"
	httpadapter "github.com/xavier-xia-99/delphi-epidata/internal/adapter/http"
	kafkaadapter "github.com/xavier-xia-99/delphi-epidata/internal/adapter/kafka"
	"github.com/xavier-xia-99/delphi-epidata/internal/config"
	"github.com/xavier-xia-99/delphi-epidata/internal/importer"
	"github.com/xavier-xia-99/delphi-epidata/internal/observability"
	"github.com/xavier-xia-99/delphi-epidata/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := importer.Scanner{Root: cfg.ReceivingDir, Clock: clockwork.NewRealClock()}
	writer := kafkaadapter.NewWriter(cfg, logger)

	var archiver pipeline.Archiver
	if cfg.ArchiveDir != "" {
		archiver = pipeline.NewFileArchiver(cfg.ReceivingDir, cfg.ArchiveDir)
		logger.Info("archiving enabled", "archive_dir", cfg.ArchiveDir)
	} else {
		logger.Info("archiving disabled")
	}

	var triggers <-chan struct{}
	var watcher *fswatch.Watcher
	if cfg.WatchEnabled {
		watcher, err = fswatch.New(cfg.ReceivingDir, cfg.WatchDebounce, logger)
		if err != nil {
			logger.Error("failed to start filesystem watcher", "error", err)
			os.Exit(1)
		}
		watcher.Start(ctx)
		triggers = watcher.Triggers()
		logger.Info("filesystem watch enabled", "debounce", cfg.WatchDebounce)
	}

	p := pipeline.New(scanner, writer, archiver, logger, metrics, cfg.ScanInterval, cfg.BatchSize, triggers)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			logger.Error("watcher close error", "error", err)
		}
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
