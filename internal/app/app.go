// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package app wires configuration into the corpus store, the embedding
// backend and the recommendation engine. Both the server and the CLI build
// their components here.
package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/api"
	"github.com/tomtom215/georisk/internal/config"
	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/recommend"
)

// Components are the long-lived objects behind every entry point.
type Components struct {
	Config    *config.Config
	Embedding *embedding.Service
	Store     *corpus.Store
	Engine    *recommend.Engine
}

// Build creates the components from cfg. Nothing touches the network until
// the first corpus read or embedding call.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	emb := embedding.NewService(EmbeddingConfig(cfg), logger)

	fetcher, err := corpus.NewFetcher(cfg.Corpus.URL, cfg.Corpus.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("corpus source: %w", err)
	}

	var embedder corpus.Embedder
	if cfg.Embedding.Enabled {
		embedder = emb
	}
	store := corpus.NewStore(fetcher, embedder, corpus.StoreConfig{
		TTL:          cfg.Corpus.TTL,
		EmbedRecords: cfg.Corpus.EmbedRecords,
	}, logger)

	engine, err := recommend.NewEngine(RecommendConfig(cfg), store, emb, logger)
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}

	return &Components{
		Config:    cfg,
		Embedding: emb,
		Store:     store,
		Engine:    engine,
	}, nil
}

// EmbeddingConfig maps the embedding section of cfg.
func EmbeddingConfig(cfg *config.Config) embedding.Config {
	e := cfg.Embedding
	return embedding.Config{
		Enabled:       e.Enabled,
		Provider:      e.Provider,
		Model:         e.Model,
		BaseURL:       e.BaseURL,
		APIKey:        e.APIKey,
		Dimensions:    e.Dimensions,
		Timeout:       e.Timeout,
		RateLimit:     e.RateLimit,
		QueryCacheTTL: e.QueryCacheTTL,
		ProbeOnInit:   e.ProbeOnInit,
	}
}

// RecommendConfig maps the recommend section of cfg onto the engine defaults.
func RecommendConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	if cfg.Recommend.DefaultMaxResults > 0 {
		rc.Limits.DefaultK = cfg.Recommend.DefaultMaxResults
	}
	if cfg.Recommend.MaxResults > 0 {
		rc.Limits.MaxK = cfg.Recommend.MaxResults
	}
	rc.MinScore = cfg.Recommend.MinScore
	return rc
}

// MiddlewareConfig maps the security section of cfg.
func MiddlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	if cfg.Security.RateLimitReqs > 0 {
		mc.RateLimitRequests = cfg.Security.RateLimitReqs
	}
	if cfg.Security.RateLimitWindow > 0 {
		mc.RateLimitWindow = cfg.Security.RateLimitWindow
	}
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}

// RefreshTimeout bounds a forced refresh: one fetch plus record embedding.
func RefreshTimeout(cfg *config.Config) time.Duration {
	return corpus.ClampTimeout(cfg.Corpus.Timeout) + cfg.Embedding.Timeout
}
