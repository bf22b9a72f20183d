// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    request context for logging and recommendation metadata
  - PrometheusMetrics: request count, duration and in-flight gauges

Both are func(http.Handler) http.Handler and plug directly into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Metrics are labeled with the chi route pattern rather than the raw path, so
path parameters do not create new label values.
*/
package middleware
