package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/nowcast-alerts/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nowcast-alerts/internal/adapter/kafka"
	"github.com/couchcryptid/nowcast-alerts/internal/adapter/meteo"
	"github.com/couchcryptid/nowcast-alerts/internal/config"
	"github.com/couchcryptid/nowcast-alerts/internal/observability"
	"github.com/couchcryptid/nowcast-alerts/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if len(cfg.UnknownRegions) > 0 {
		logger.Warn("configured regions match no county and will never alert", "regions", cfg.UnknownRegions)
	}

	client := meteo.NewClient(meteo.Options{
		URL:             cfg.FeedURL,
		PollTimeout:     cfg.PollTimeout,
		ValidateTimeout: cfg.ValidateTimeout,
		MaxBytes:        cfg.MaxBytes,
	}, logger)
	transformer := pipeline.NewTransformer(cfg.Regions, cfg.Location)

	opts := []pipeline.Option{
		pipeline.WithSource(cfg.FeedURL),
		pipeline.WithInterval(cfg.PollInterval),
		pipeline.WithTimeout(cfg.PollTimeout),
	}

	// Kafka publishing is feature-flagged via KAFKA_ENABLED.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithSinks(writer))
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(client, transformer, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting nowcast poller",
		"url", cfg.FeedURL,
		"regions", cfg.Regions,
		"timezone", cfg.Location.String(),
	)

	g, gctx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Start poller.
	g.Go(func() error {
		return p.Run(gctx)
	})

	// Drain the server once either the signal arrives or a component fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		exitCode = 1
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
}
