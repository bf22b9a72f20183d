// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

/*
Package models defines the HTTP API request and response structures.

Key Components:

  - APIResponse: the envelope every endpoint returns
  - RecommendationRequest / FallbackRequest: POST bodies, validated with
    go-playground/validator tags
  - CacheStatsResponse, RefreshResponse, HealthResponse: endpoint payloads

Envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-01T12:00:00Z", "query_time_ms": 4}
	}

Errors use the same envelope with status "error" and an error object:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {"timestamp": "2026-01-01T12:00:00Z"},
	  "error": {"code": "VALIDATION_ERROR", "message": "health_data is required"}
	}
*/
package models
