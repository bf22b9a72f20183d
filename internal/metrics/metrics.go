// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_recommend_requests_total",
			Help: "Total number of recommendation requests by scoring method",
		},
		[]string{"method"}, // "hybrid", "keyword", "fallback"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "georisk_recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method"},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "georisk_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	RecommendSkippedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "georisk_recommend_skipped_candidates_total",
			Help: "Candidates dropped because their score could not be computed",
		},
	)

	// Corpus Metrics
	CorpusFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_corpus_fetches_total",
			Help: "Total corpus fetch attempts by outcome",
		},
		[]string{"result"}, // "success", "transport_error", "data_error"
	)

	CorpusFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "georisk_corpus_fetch_duration_seconds",
			Help:    "Duration of corpus fetches including embedding",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CorpusRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "georisk_corpus_records",
			Help: "Number of intervention records in the active corpus",
		},
	)

	CorpusVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "georisk_corpus_version",
			Help: "Version counter of the active corpus",
		},
	)

	CorpusEmbeddings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "georisk_corpus_has_embeddings",
			Help: "1 if the active corpus carries an embedding matrix, 0 otherwise",
		},
	)

	// Embedding Metrics
	EmbeddingAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "georisk_embedding_available",
			Help: "1 if the embedding backend initialized successfully, 0 otherwise",
		},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_embedding_requests_total",
			Help: "Embedding provider calls by provider and outcome",
		},
		[]string{"provider", "result"},
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "georisk_embedding_duration_seconds",
			Help:    "Embedding provider call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "corpus", "query_embedding"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "georisk_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "georisk_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "georisk_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "georisk_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "georisk_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)
)

// RecordRecommendation records one orchestrator call.
func RecordRecommendation(method string, results, skipped int, duration time.Duration) {
	RecommendRequests.WithLabelValues(method).Inc()
	RecommendDuration.WithLabelValues(method).Observe(duration.Seconds())
	RecommendResults.Observe(float64(results))
	if skipped > 0 {
		RecommendSkippedCandidates.Add(float64(skipped))
	}
}

// RecordCorpusFetch records a corpus fetch attempt.
func RecordCorpusFetch(result string, duration time.Duration) {
	CorpusFetches.WithLabelValues(result).Inc()
	CorpusFetchDuration.Observe(duration.Seconds())
}

// RecordCorpusActive publishes the shape of the corpus currently served.
func RecordCorpusActive(records int, version uint64, hasEmbeddings bool) {
	CorpusRecords.Set(float64(records))
	CorpusVersion.Set(float64(version))
	CorpusEmbeddings.Set(boolToFloat(hasEmbeddings))
}

// RecordEmbeddingCall records one provider round trip.
func RecordEmbeddingCall(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EmbeddingRequests.WithLabelValues(provider, result).Inc()
	EmbeddingDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetEmbeddingAvailable publishes backend availability.
func SetEmbeddingAvailable(available bool) {
	EmbeddingAvailable.Set(boolToFloat(available))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
