// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package api

import (
	"context"
	"time"

	"github.com/tomtom215/georisk/internal/cache"
	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/recommend"
)

// Recommender ranks interventions. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) *recommend.Response
	Fallback(ctx context.Context, req recommend.Request) *recommend.Response
	Stats() recommend.EngineStats
}

// CorpusAdmin exposes corpus cache control. *corpus.Store implements it.
type CorpusAdmin interface {
	Stats() corpus.Stats
	Invalidate() bool
	Refresh(ctx context.Context) (*corpus.IndexedCorpus, error)
}

// EmbeddingStatus reports on the semantic backend. *embedding.Service implements it.
type EmbeddingStatus interface {
	Status() embedding.Status
	CacheStats() *cache.Stats
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	corpus    CorpusAdmin
	embedding EmbeddingStatus

	version        string
	startTime      time.Time
	requestTimeout time.Duration
	refreshTimeout time.Duration
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	Version string

	// RequestTimeout bounds a recommendation request. 0 = no extra bound.
	RequestTimeout time.Duration

	// RefreshTimeout bounds a forced corpus refresh.
	RefreshTimeout time.Duration
}

// NewHandler creates a new API handler. embeddingStatus may be nil.
func NewHandler(engine Recommender, corpusAdmin CorpusAdmin, embeddingStatus EmbeddingStatus, cfg HandlerConfig) *Handler {
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = corpus.MaxFetchTimeout + 30*time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:         engine,
		corpus:         corpusAdmin,
		embedding:      embeddingStatus,
		version:        cfg.Version,
		startTime:      time.Now(),
		requestTimeout: cfg.RequestTimeout,
		refreshTimeout: cfg.RefreshTimeout,
	}
}

// requestContext applies the request timeout, if any.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}
