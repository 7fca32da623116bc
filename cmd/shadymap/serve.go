package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/shady-map-service/internal/adapter/form"
	httpadapter "github.com/couchcryptid/shady-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/shady-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/shady-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
	"github.com/couchcryptid/shady-map-service/internal/submission"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the map API, ingesting the feed and forwarding submissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	metrics := observability.NewMetrics()

	p, err := newPipeline("", metrics)
	if err != nil {
		return err
	}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var sinks []submission.Sink
	if cfg.FormURL != "" {
		sinks = append(sinks, form.NewClient(cfg.FormURL, cfg.FormFields, cfg.SubmitTimeout, logger))
	}
	var writer *kafkaadapter.Writer
	if len(cfg.KafkaBrokers) > 0 {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
	}
	if len(sinks) == 0 {
		logger.Info("submission forwarding disabled")
	}
	dispatcher := submission.NewDispatcher(sinks, submission.Options{
		QueueSize:     cfg.SubmitQueueSize,
		RatePerSecond: cfg.SubmitRatePerSecond,
		SendTimeout:   cfg.SubmitTimeout,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Views:       p,
		Ready:       p,
		Geocoder:    geocoder,
		Submissions: dispatcher,
		StaticDir:   cfg.StaticDir,
	}, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start ingestion.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	// Start submission forwarding.
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		if err := dispatcher.Run(ctx); err != nil {
			logger.Error("dispatcher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-dispatched:
	case <-shutdownCtx.Done():
		logger.Warn("submission queue not drained before shutdown deadline")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
