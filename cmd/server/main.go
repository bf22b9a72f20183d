// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package main is the entry point for the GeoRisk API server.
//
// GeoRisk ranks public-health interventions for a region's health
// indicators. The server loads the intervention corpus from a remote JSON
// document (or a local file), optionally embeds it, and serves ranked
// recommendations over HTTP.
//
// # Application Architecture
//
//	RootSupervisor ("georisk")
//	├── corpus-layer
//	│   ├── embedding-warmup
//	│   ├── corpus-refresh (when CACHE_REFRESH_INTERVAL > 0)
//	│   └── cache-maintenance (when CACHE_CLEANUP_INTERVAL > 0)
//	└── api-layer
//	    └── http-server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables, after an optional .env file
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Common variables:
//   - CORPUS_URL: intervention database URL or path
//   - EMBEDDING_PROVIDER: openai, ollama or hashing
//   - EMBEDDING_API_KEY: OpenAI API key
//   - HTTP_PORT: listen port (default 8000)
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server gracefully and reports any service that did not stop in time.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/georisk/internal/api"
	"github.com/tomtom215/georisk/internal/app"
	"github.com/tomtom215/georisk/internal/config"
	"github.com/tomtom215/georisk/internal/logging"
	"github.com/tomtom215/georisk/internal/supervisor"
	"github.com/tomtom215/georisk/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("version", version).
		Str("corpus_url", cfg.Corpus.URL).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Str("embedding_provider", cfg.Embedding.Provider).
		Msg("Starting GeoRisk")

	components, err := app.Build(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize components")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	addCorpusServices(tree, components)

	refreshTimeout := app.RefreshTimeout(cfg)
	handler := api.NewHandler(components.Engine, components.Store, components.Embedding, api.HandlerConfig{
		Version:        version,
		RequestTimeout: cfg.Server.Timeout,
		RefreshTimeout: refreshTimeout,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(app.MiddlewareConfig(cfg)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      max(cfg.Server.Timeout, refreshTimeout) + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	logger.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received, waiting for supervisor to finish")

	// The root supervisor sends exactly one value once every layer has stopped.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor shutdown error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logger.Info().Msg("GeoRisk stopped")
}

// addCorpusServices registers the background jobs of the corpus layer.
func addCorpusServices(tree *supervisor.SupervisorTree, c *app.Components) {
	logger := logging.Logger()
	cfg := c.Config

	if cfg.Embedding.Enabled {
		tree.AddCorpusService(services.NewEmbeddingWarmupService(c.Embedding, logger))
	}

	if cfg.Cache.RefreshInterval > 0 {
		tree.AddCorpusService(services.NewCorpusRefreshService(c.Store, services.CorpusRefreshConfig{
			RefreshOnStart: true,
			Interval:       cfg.Cache.RefreshInterval,
			Timeout:        app.RefreshTimeout(cfg),
		}, logger))
	}

	if cfg.Cache.CleanupInterval > 0 {
		tree.AddCorpusService(services.NewCacheMaintenanceService(cfg.Cache.CleanupInterval, logger, c.Store, c.Embedding))
	}
}
