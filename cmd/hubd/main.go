package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/resilience-hubs/internal/adapter/fixture"
	"github.com/couchcryptid/resilience-hubs/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/resilience-hubs/internal/adapter/kafka"
	"github.com/couchcryptid/resilience-hubs/internal/adapter/mapbox"
	"github.com/couchcryptid/resilience-hubs/internal/adapter/postgres"
	"github.com/couchcryptid/resilience-hubs/internal/adapter/remote"
	"github.com/couchcryptid/resilience-hubs/internal/config"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/hubs"
	"github.com/couchcryptid/resilience-hubs/internal/observability"
	"github.com/couchcryptid/resilience-hubs/internal/pipeline"
)

// readyFunc adapts a function to the readiness checker interface.
type readyFunc func(ctx context.Context) error

func (f readyFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		source domain.HubSource
		store  *fixture.Store
		db     *postgres.Source
	)
	ready := readyFunc(func(context.Context) error { return nil })

	switch cfg.HubSource {
	case config.SourceFixture:
		doc, err := fixture.ReadFile(cfg.FixturePath)
		if err != nil {
			logger.Error("failed to load fixture", "error", err)
			os.Exit(1)
		}
		store = fixture.NewStore(doc, fixture.WithDelay(cfg.SimulatedDelay))
		source = store
		logger.Info("hub source: fixture", "hubs", store.Len(), "path", cfg.FixturePath)
	case config.SourceRemote:
		source = remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
		logger.Info("hub source: remote", "base_url", cfg.APIBaseURL)
	case config.SourcePostgres:
		db, err = postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		source = db
		ready = db.Ping
		logger.Info("hub source: postgres")
	default:
		logger.Error("unsupported hub source", "source", cfg.HubSource)
		os.Exit(1)
	}

	svc := hubs.NewService(source, metrics, hubs.Options{
		TTL:           cfg.CacheTTL,
		DefaultRadius: cfg.DefaultRadius,
		Logger:        logger,
	})

	// Address search is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var (
		reader *kafkaadapter.Reader
		feed   *pipeline.Pipeline
	)
	if cfg.StatusFeedEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		loader := pipeline.NewStoreLoader(store, svc, logger, metrics)
		feed = pipeline.New(reader, pipeline.NewTransformer(), loader, logger, metrics, cfg.BatchSize)
		ready = feed.CheckReadiness
		logger.Info("status feed enabled", "topic", cfg.KafkaStatusTopic, "group_id", cfg.KafkaGroupID)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Hubs:     svc,
		Ready:    ready,
		Geocoder: geocoder,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if feed != nil {
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("status feed error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if db != nil {
		db.Close()
	}

	logger.Info("shutdown complete")
}
