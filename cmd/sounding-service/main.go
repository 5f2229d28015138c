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
	httpadapter "github.com/couchcryptid/storm-sounding-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-sounding-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/storm-sounding-service/internal/config"
	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/observability"
	"github.com/couchcryptid/storm-sounding-service/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-service/internal/stations"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog, err := stations.Load(cfg.StationCatalog)
	if err != nil {
		logger.Error("failed to load station catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("station catalog loaded", "stations", catalog.Len())

	var fetcher domain.SoundingFetcher = uwyo.NewClient(cfg.UWYOBaseURL, cfg.UWYORegion, cfg.UWYOTimeout, cfg.UWYOMaxRetries, logger, metrics)
	if cfg.CacheSize > 0 {
		fetcher = uwyo.NewCachedFetcher(fetcher, cfg.CacheSize, cfg.CacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("sounding cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	// Report publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher pipeline.ReportPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("report publishing disabled")
	}

	analyzer := pipeline.New(fetcher, catalog, publisher, domain.Options{LegacyStormWrap: cfg.LegacyStormWrap}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, analyzer, analyzer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
