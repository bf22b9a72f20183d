// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package models

import (
	"time"

	"github.com/tomtom215/georisk/internal/cache"
	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/recommend"
)

// RecommendationRequest is the body of POST /api/v1/recommendations.
type RecommendationRequest struct {
	HealthData *recommend.HealthProfile `json:"health_data" validate:"required"`
	Query      string                   `json:"query,omitempty" validate:"max=1000"`

	// MaxResults of 0 uses the server default; larger values are clamped.
	MaxResults int `json:"max_results,omitempty" validate:"gte=0"`
}

// FallbackRequest is the body of POST /api/v1/recommendations/fallback.
type FallbackRequest struct {
	HealthData *recommend.HealthProfile `json:"health_data" validate:"required"`
	MaxResults int                      `json:"max_results,omitempty" validate:"gte=0"`
}

// CacheStatsResponse is returned by GET /api/v1/interventions/cache.
type CacheStatsResponse struct {
	Corpus         corpus.Stats `json:"corpus"`
	QueryEmbedding *cache.Stats `json:"query_embedding,omitempty"`
}

// InvalidateResponse is returned by DELETE /api/v1/interventions/cache.
type InvalidateResponse struct {
	Invalidated bool `json:"invalidated"`
}

// RefreshResponse is returned by POST /api/v1/interventions/refresh.
type RefreshResponse struct {
	Records        int       `json:"records"`
	Version        uint64    `json:"version"`
	Source         string    `json:"source"`
	HasEmbeddings  bool      `json:"has_embeddings"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string                `json:"status"`
	Version       string                `json:"version"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Corpus        corpus.Stats          `json:"corpus"`
	Embedding     embedding.Status      `json:"embedding"`
	Engine        recommend.EngineStats `json:"engine"`
}
