// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/models"
)

// Health status values.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// Health handles GET /health
// The service is degraded, not down, when no corpus is loaded: requests
// still succeed with empty results.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()

	stats := h.corpus.Stats()
	data := models.HealthResponse{
		Status:        HealthHealthy,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Corpus:        stats,
		Embedding:     embedding.Status{State: "disabled"},
		Engine:        h.engine.Stats(),
	}
	if h.embedding != nil {
		data.Embedding = h.embedding.Status()
	}
	if stats.Records == 0 {
		data.Status = HealthDegraded
	}

	respondSuccess(w, data, start)
}
