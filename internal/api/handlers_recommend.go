// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/georisk/internal/logging"
	"github.com/tomtom215/georisk/internal/models"
	"github.com/tomtom215/georisk/internal/recommend"
)

// Recommendations handles POST /api/v1/recommendations
// Ranks interventions for a health profile and optional query.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body models.RecommendationRequest
	if !decodeAndValidate(w, r, &body) {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	resp := h.engine.Recommend(ctx, recommend.Request{
		Profile:    *body.HealthData,
		Query:      body.Query,
		MaxResults: body.MaxResults,
		RequestID:  logging.RequestIDFromContext(r.Context()),
	})

	respondSuccess(w, resp, start)
}

// FallbackRecommendations handles POST /api/v1/recommendations/fallback
// Ranks interventions with keyword and context scores only.
func (h *Handler) FallbackRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body models.FallbackRequest
	if !decodeAndValidate(w, r, &body) {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	resp := h.engine.Fallback(ctx, recommend.Request{
		Profile:    *body.HealthData,
		MaxResults: body.MaxResults,
		RequestID:  logging.RequestIDFromContext(r.Context()),
	})

	respondSuccess(w, resp, start)
}
