// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/georisk/internal/logging"
	"github.com/tomtom215/georisk/internal/models"
)

// CacheStats handles GET /api/v1/interventions/cache
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()

	data := models.CacheStatsResponse{Corpus: h.corpus.Stats()}
	if h.embedding != nil {
		data.QueryEmbedding = h.embedding.CacheStats()
	}

	respondSuccess(w, data, start)
}

// InvalidateCache handles DELETE /api/v1/interventions/cache
// The next recommendation request fetches the corpus again.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	invalidated := h.corpus.Invalidate()
	logging.Ctx(r.Context()).Info().Bool("invalidated", invalidated).Msg("Corpus cache invalidated via API")

	respondSuccess(w, models.InvalidateResponse{Invalidated: invalidated}, start)
}

// RefreshCorpus handles POST /api/v1/interventions/refresh
// Fetches the corpus now. On failure the cached corpus is left in place.
func (h *Handler) RefreshCorpus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// A refresh outlives a disconnected client so the fetch is not wasted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.refreshTimeout)
	defer cancel()

	c, err := h.corpus.Refresh(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, CodeRefreshFailed, "Failed to refresh intervention corpus", err)
		return
	}

	meta := c.Meta()
	respondSuccess(w, models.RefreshResponse{
		Records:        c.Len(),
		Version:        c.Version(),
		Source:         meta.Source,
		HasEmbeddings:  c.HasEmbeddings(),
		EmbeddingModel: meta.EmbeddingModel,
		FetchedAt:      meta.FetchedAt,
	}, start)
}
