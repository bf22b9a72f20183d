// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"time"

	"github.com/tomtom215/georisk/internal/corpus"
)

// Method names the combination policy a response was ranked with.
type Method string

const (
	// MethodHybrid combines vector, keyword and context scores.
	MethodHybrid Method = "hybrid"

	// MethodKeyword uses keyword and context scores because vector scores
	// were not usable.
	MethodKeyword Method = "keyword"

	// MethodFallback is the explicit keyword-only path.
	MethodFallback Method = "fallback"
)

// ScoreBreakdown holds a record's component scores.
type ScoreBreakdown struct {
	Combined float64 `json:"combined"`
	Vector   float64 `json:"vector"`
	Keyword  float64 `json:"keyword"`
	Context  float64 `json:"context"`
}

// Recommendation is one ranked intervention.
type Recommendation struct {
	corpus.Record

	Scores ScoreBreakdown `json:"scores"`

	// Rank is 1-based.
	Rank int `json:"rank"`
}

// Request represents a recommendation request.
type Request struct {
	// Profile is the region's health indicators.
	Profile HealthProfile `json:"health_data"`

	// Query is optional free text. When empty, one is derived from the profile.
	Query string `json:"query,omitempty"`

	// MaxResults limits the result count. Zero or less uses the default.
	MaxResults int `json:"max_results,omitempty"`

	// RequestID for tracing. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a recommendation response.
type Response struct {
	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`

	// Query is the effective query used for scoring.
	Query string `json:"query"`

	// QueryDerived is true when Query was built from the profile.
	QueryDerived bool `json:"query_derived"`

	Method Method `json:"method"`

	// TotalCandidates is the corpus size at scoring time.
	TotalCandidates int `json:"total_candidates"`

	// Skipped counts candidates dropped by a scoring failure.
	Skipped int `json:"skipped"`

	CorpusVersion uint64    `json:"corpus_version"`
	LatencyMS     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
}
