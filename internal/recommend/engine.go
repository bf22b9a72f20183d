// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/logging"
	"github.com/tomtom215/georisk/internal/metrics"
)

// errNonFinite marks a candidate whose score is NaN or infinite.
var errNonFinite = errors.New("non-finite score")

// CorpusSource provides the current intervention corpus.
// *corpus.Store implements it.
type CorpusSource interface {
	Current(ctx context.Context) *corpus.IndexedCorpus
}

// Engine ranks corpus records for a health profile.
// It is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	source  CorpusSource
	backend embedding.Backend
	now     func() time.Time

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	skippedCount  atomic.Int64
}

// EngineStats is a snapshot of engine counters.
type EngineStats struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Skipped   int64 `json:"skipped_candidates"`
}

// NewEngine creates a new recommendation engine. A nil backend disables
// vector scoring.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source CorpusSource, backend embedding.Backend, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("corpus source is required")
	}

	return &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		source:  source,
		backend: backend,
		now:     time.Now,
	}, nil
}

// GetRecommendations returns up to maxResults records ranked for the profile.
// An empty query is derived from the profile's triggered indicators.
func (e *Engine) GetRecommendations(ctx context.Context, profile HealthProfile, query string, maxResults int) []Recommendation {
	return e.Recommend(ctx, Request{Profile: profile, Query: query, MaxResults: maxResults}).Items
}

// GetFallbackRecommendations ranks with keyword and context scores only.
// It never calls the embedding backend.
func (e *Engine) GetFallbackRecommendations(ctx context.Context, profile HealthProfile, maxResults int) []Recommendation {
	return e.Fallback(ctx, Request{Profile: profile, MaxResults: maxResults}).Items
}

// Recommend ranks records with the hybrid policy when vector scores are
// usable, otherwise with keyword weights.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) *Response {
	return e.run(ctx, req, false)
}

// Fallback ranks records with keyword weights only.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Fallback(ctx context.Context, req Request) *Response {
	e.fallbackCount.Add(1)
	return e.run(ctx, req, true)
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Requests:  e.requestCount.Load(),
		Fallbacks: e.fallbackCount.Load(),
		Skipped:   e.skippedCount.Load(),
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) run(ctx context.Context, req Request, fallback bool) *Response {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(ctx, req)
	query, derived := resolveQuery(req)

	method := MethodKeyword
	if fallback {
		method = MethodFallback
	}

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("region", req.Profile.Region).
		Logger()
	logger.Debug().Bool("fallback", fallback).Msg("processing recommendation request")

	c := e.source.Current(ctx)
	if c.Len() == 0 {
		logger.Debug().Msg("corpus empty, no recommendations")
		return e.finish(req, nil, method, query, derived, c, 0, start, logger)
	}

	weights := e.config.KeywordOnly
	var vectors []float64
	if !fallback {
		vectors = vectorScores(ctx, e.backend, c, query, logger)
		if vectors != nil {
			if maxScore(vectors) > 0 {
				method = MethodHybrid
				weights = e.config.Hybrid
			} else {
				// Nothing is similar enough to weigh in. The raw scores are
				// still reported in each breakdown.
				zeroNonFinite(vectors)
			}
		}
	}

	scorer := newKeywordScorer(req.Profile, req.Query)
	candidates := make([]Recommendation, 0, c.Len())
	skipped := 0
	for i := 0; i < c.Len(); i++ {
		r := c.Record(i)
		vector := 0.0
		if vectors != nil {
			vector = vectors[i]
		}
		scores, err := scoreCandidate(scorer, req.Profile, r, vector, weights)
		if err != nil {
			skipped++
			logger.Warn().Err(err).
				Int("index", i).
				Str("record_id", r.ID).
				Msg("skipping candidate")
			continue
		}
		candidates = append(candidates, Recommendation{Record: *r, Scores: scores})
	}

	items := selectTop(candidates, e.config.MinScore, req.MaxResults)
	return e.finish(req, items, method, query, derived, c, skipped, start, logger)
}

// prepareRequest applies defaults and resolves the request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) Request {
	if req.RequestID == "" {
		_, req.RequestID = logging.EnsureRequestID(ctx)
	}
	if req.MaxResults <= 0 {
		req.MaxResults = e.config.Limits.DefaultK
	}
	if req.MaxResults > e.config.Limits.MaxK {
		req.MaxResults = e.config.Limits.MaxK
	}
	return req
}

// resolveQuery returns the caller's query, or one derived from the profile.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func resolveQuery(req Request) (query string, derived bool) {
	if q := strings.TrimSpace(req.Query); q != "" {
		return q, false
	}
	return DeriveQuery(req.Profile), true
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) finish(req Request, items []Recommendation, method Method, query string, derived bool,
	c *corpus.IndexedCorpus, skipped int, start time.Time, logger zerolog.Logger) *Response {
	if items == nil {
		items = []Recommendation{}
	}
	if skipped > 0 {
		e.skippedCount.Add(int64(skipped))
	}

	elapsed := time.Since(start)
	metrics.RecordRecommendation(string(method), len(items), skipped, elapsed)

	logger.Debug().
		Str("method", string(method)).
		Int("candidates", c.Len()).
		Int("returned", len(items)).
		Int("skipped", skipped).
		Dur("latency", elapsed).
		Msg("recommendation complete")

	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			Query:           query,
			QueryDerived:    derived,
			Method:          method,
			TotalCandidates: c.Len(),
			Skipped:         skipped,
			CorpusVersion:   c.Version(),
			LatencyMS:       elapsed.Milliseconds(),
			Timestamp:       e.now().UTC(),
		},
	}
}

// scoreCandidate computes one record's breakdown. A panic or a non-finite
// score is returned as an error.
func scoreCandidate(scorer *keywordScorer, profile HealthProfile, r *corpus.Record, vector float64, w Weights) (s ScoreBreakdown, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scoring panicked: %v", p)
		}
	}()

	s.Vector = vector
	s.Keyword = scorer.Score(r)
	s.Context = ContextScore(profile, r)
	s.Combined = w.Combine(s)

	for _, v := range [...]float64{s.Vector, s.Keyword, s.Context, s.Combined} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ScoreBreakdown{}, errNonFinite
		}
	}
	return s, nil
}

// selectTop sorts by combined score (stable, so ties keep corpus order),
// drops scores below minScore, truncates to k and assigns ranks.
func selectTop(items []Recommendation, minScore float64, k int) []Recommendation {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Scores.Combined > items[j].Scores.Combined
	})

	out := make([]Recommendation, 0, min(k, len(items)))
	for i := range items {
		if len(out) == k {
			break
		}
		if items[i].Scores.Combined < minScore {
			break
		}
		items[i].Rank = len(out) + 1
		out = append(out, items[i])
	}
	return out
}
