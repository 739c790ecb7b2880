package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/organ-match-server/internal/api"
	"github.com/organ-match-server/internal/config"
	"github.com/organ-match-server/internal/domain"
	"github.com/organ-match-server/internal/geo"
	"github.com/organ-match-server/internal/logging"
	"github.com/organ-match-server/internal/matching"
	"github.com/organ-match-server/internal/store"
	"github.com/organ-match-server/internal/viability"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)
	logger.Infof("Starting organ match server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Prediction cache: redis when configured, in-process LRU always.
	cache, err := viability.NewPredictionCache(cfg.Cache, logger)
	if err != nil {
		log.Fatalf("Failed to initialize prediction cache: %v", err)
	}
	defer cache.Close()

	// A missing or invalid model artifact degrades ranking to default
	// viability instead of refusing to start.
	var estimator domain.ViabilityEstimator
	model, err := viability.LoadModelEstimator(logger, cfg.Model.ArtifactPath, cache)
	if err != nil {
		logger.WithError(err).Warn("Viability model not loaded, running in degraded mode")
	} else {
		estimator = model
		if cfg.Model.BreakerEnabled {
			estimator = viability.NewResilientEstimator(logger, model, cfg.Model)
		}
	}

	matchStore, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open match store: %v", err)
	}
	if matchStore != nil {
		defer matchStore.Close()
	}

	engine := matching.NewEngine(logger, estimator, geo.NewHaversineCalculator())
	server := api.NewServer(configManager, logger, engine, estimator, matchStore)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

// openStore builds the configured match store. Driver "none" disables
// persistence; the ranking endpoints still work.
func openStore(cfg domain.StorageConfig) (domain.MatchStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return store.NewPostgresStoreFromURL(cfg.PostgresURL, cfg)
	case "none":
		return nil, nil
	default:
		return nil, domain.NewConfigurationError("unsupported storage driver: %s", cfg.Driver)
	}
}
