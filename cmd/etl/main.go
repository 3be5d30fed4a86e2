package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/argo-float-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/argo-float-etl/internal/adapter/kafka"
	"github.com/couchcryptid/argo-float-etl/internal/config"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
	"github.com/couchcryptid/argo-float-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var (
		publisher *pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.NewPublisher(writer, cfg.BatchSize, logger, metrics)
		logger.Info("profile publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaProfileTopic)
	} else {
		logger.Info("profile publishing disabled")
	}

	holder := &pipeline.Holder{}
	ingester := pipeline.NewIngester(cfg.SourceDir, cfg.IngestWorkers, cfg.InactiveAfter, logger, metrics)
	reloader := pipeline.NewReloader(ingester, holder, publisher, clockwork.NewRealClock(), cfg.ReingestInterval, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, holder, holder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The initial build must succeed before the service is useful.
	if _, err := reloader.Reload(ctx); err != nil {
		logger.Error("initial ingestion failed", "source_dir", cfg.SourceDir, "error", err)
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start periodic re-ingestion.
	go func() {
		if err := reloader.Run(ctx); err != nil {
			logger.Error("reloader error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
