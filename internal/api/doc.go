// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Routes:

	POST   /api/v1/recommendations            hybrid ranking
	POST   /api/v1/recommendations/fallback   keyword-only ranking
	GET    /api/v1/interventions/cache        corpus and query-embedding cache stats
	DELETE /api/v1/interventions/cache        drop the cached corpus
	POST   /api/v1/interventions/refresh      fetch the corpus now
	GET    /health                            component status
	GET    /metrics                           Prometheus exposition

Middleware Stack:

Every route gets a request ID, real-IP extraction, panic recovery and CORS.
The /api/v1 group adds per-IP rate limiting (go-chi/httprate), security
headers and Prometheus request metrics. Refresh has a stricter limit because
each call reaches the corpus source.

Every response uses the models.APIResponse envelope.
*/
package api
