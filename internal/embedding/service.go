// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package embedding provides the optional semantic backend.
//
// The backend is capability gated: callers branch on Available rather than
// handling provider errors. Initialization is deferred to the first call that
// needs a vector, runs once across concurrent callers, and a failure leaves
// the backend unavailable for the life of the process. While unavailable every
// operation returns an empty result instead of an error.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/georisk/internal/cache"
	"github.com/tomtom215/georisk/internal/metrics"
)

// Backend is the semantic encoder used by the corpus store and the ranker.
type Backend interface {
	// Available reports whether embeddings can be produced, initializing the
	// backend on first use.
	Available(ctx context.Context) bool

	// GenerateEmbedding embeds one text. Unavailable: empty vector, nil error.
	// Empty text on an available backend: *ValidationError.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateEmbeddingsBatch embeds the non-empty texts in order.
	// Unavailable: empty matrix, nil error. All empty: *ValidationError.
	GenerateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ComputeSimilarity returns one cosine score per matrix row.
	ComputeSimilarity(query []float32, matrix [][]float32) []float64

	// FindMostSimilar returns up to k rows, best first.
	FindMostSimilar(query []float32, matrix [][]float32, k int) []Match

	// Model names the embedding model.
	Model() string
}

// Initialization states.
const (
	stateUninitialized int32 = iota
	stateReady
	stateUnavailable
)

const (
	queryCacheName = "query_embedding"
	probeText      = "community health intervention"
)

// Status describes the backend for health checks.
type Status struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

// Service implements Backend on top of a provider Encoder.
type Service struct {
	cfg     Config
	factory EncoderFactory
	logger  zerolog.Logger

	state   atomic.Int32
	encoder Encoder // written once before state becomes ready
	initErr atomic.Pointer[string]
	initSF  singleflight.Group

	limiter    *rate.Limiter
	queryCache *cache.TTL[[]float32]
}

var _ Backend = (*Service)(nil)

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	factory EncoderFactory
	clock   cache.Clock
}

// WithEncoderFactory replaces provider construction.
func WithEncoderFactory(f EncoderFactory) Option {
	return func(o *serviceOptions) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithClock sets the clock of the query embedding cache.
func WithClock(c cache.Clock) Option {
	return func(o *serviceOptions) { o.clock = c }
}

// NewService creates a Service. Nothing is initialized until first use.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewService(cfg Config, logger zerolog.Logger, opts ...Option) *Service {
	o := serviceOptions{factory: NewEncoder, clock: cache.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.withDefaults()
	s := &Service{
		cfg:     cfg,
		factory: o.factory,
		logger:  logger.With().Str("component", "embedding").Str("provider", cfg.Provider).Logger(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.QueryCacheTTL > 0 {
		s.queryCache = cache.New[[]float32](cfg.QueryCacheTTL, cache.WithClock(o.clock), cache.WithName(queryCacheName))
	}
	if !s.enabled() {
		s.markUnavailable("disabled by configuration")
	}
	return s
}

func (s *Service) enabled() bool {
	return s.cfg.Enabled && s.cfg.Provider != ""
}

// Available implements Backend.
func (s *Service) Available(ctx context.Context) bool {
	switch s.state.Load() {
	case stateReady:
		return true
	case stateUnavailable:
		return false
	}
	return s.Init(ctx) == nil
}

// Init initializes the backend if it has not been. Concurrent callers share
// one attempt. Returns ErrUnavailable, wrapped with the cause, on failure.
func (s *Service) Init(ctx context.Context) error {
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateUnavailable:
		return s.unavailableErr()
	}

	ch := s.initSF.DoChan("init", func() (interface{}, error) {
		if s.state.Load() != stateUninitialized {
			return nil, nil
		}
		s.initialize(context.WithoutCancel(ctx))
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
	}
	if s.state.Load() == stateReady {
		return nil
	}
	return s.unavailableErr()
}

func (s *Service) initialize(ctx context.Context) {
	start := time.Now()

	enc, err := s.factory(s.cfg)
	if err != nil {
		s.markUnavailable(err.Error())
		s.logger.Warn().Err(err).Msg("Embedding backend failed to initialize, semantic scoring disabled")
		return
	}

	if s.cfg.ProbeOnInit {
		probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		rows, perr := enc.Embed(probeCtx, []string{probeText})
		cancel()
		metrics.RecordEmbeddingCall(enc.Provider(), time.Since(start), perr)
		if perr == nil && (len(rows) != 1 || len(rows[0]) == 0) {
			perr = fmt.Errorf("probe returned %d rows", len(rows))
		}
		if perr != nil {
			s.markUnavailable(perr.Error())
			s.logger.Warn().Err(perr).Msg("Embedding probe failed, semantic scoring disabled")
			return
		}
	}

	s.encoder = enc
	s.state.Store(stateReady)
	metrics.SetEmbeddingAvailable(true)
	s.logger.Info().
		Str("model", enc.Model()).
		Dur("duration", time.Since(start)).
		Msg("Embedding backend initialized")
}

func (s *Service) markUnavailable(reason string) {
	s.initErr.Store(&reason)
	s.state.Store(stateUnavailable)
	metrics.SetEmbeddingAvailable(false)
}

func (s *Service) unavailableErr() error {
	if reason := s.initErr.Load(); reason != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, *reason)
	}
	return ErrUnavailable
}

// Status reports configuration and initialization state.
func (s *Service) Status() Status {
	st := Status{
		Enabled:  s.cfg.Enabled,
		Provider: s.cfg.Provider,
		Model:    s.Model(),
	}
	switch s.state.Load() {
	case stateReady:
		st.State = "ready"
	case stateUnavailable:
		st.State = "unavailable"
		if reason := s.initErr.Load(); reason != nil {
			st.Error = *reason
		}
	default:
		st.State = "uninitialized"
	}
	return st
}

// Model implements Backend.
func (s *Service) Model() string {
	if s.state.Load() == stateReady {
		return s.encoder.Model()
	}
	return s.cfg.Model
}

// GenerateEmbedding implements Backend.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !s.Available(ctx) {
		return []float32{}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "must not be empty"}
	}

	if s.queryCache == nil {
		return s.embedSingle(ctx, text)
	}

	key := cache.GenerateKey("embedding", struct {
		Model string `json:"model"`
		Text  string `json:"text"`
	}{s.encoder.Model(), text})

	return s.queryCache.GetOrLoad(ctx, key, func(ctx context.Context) ([]float32, time.Duration, error) {
		v, err := s.embedSingle(ctx, text)
		return v, 0, err
	})
}

func (s *Service) embedSingle(ctx context.Context, text string) ([]float32, error) {
	rows, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// GenerateEmbeddingsBatch implements Backend.
func (s *Service) GenerateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !s.Available(ctx) {
		return [][]float32{}, nil
	}

	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, &ValidationError{Field: "texts", Message: "all texts are empty"}
	}
	return s.embed(ctx, kept)
}

// embed calls the encoder under the rate limit and checks the row count.
func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.encoder.Embed(callCtx, texts)
	if err == nil && len(rows) != len(texts) {
		err = fmt.Errorf("encoder returned %d rows for %d texts", len(rows), len(texts))
	}
	metrics.RecordEmbeddingCall(s.encoder.Provider(), time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Int("texts", len(texts)).Msg("Embedding request failed")
		return nil, err
	}
	return rows, nil
}

// ComputeSimilarity implements Backend.
func (s *Service) ComputeSimilarity(query []float32, matrix [][]float32) []float64 {
	if s.state.Load() != stateReady {
		return []float64{}
	}
	scores := CosineAll(query, matrix)
	if scores == nil {
		return []float64{}
	}
	return scores
}

// FindMostSimilar implements Backend.
func (s *Service) FindMostSimilar(query []float32, matrix [][]float32, k int) []Match {
	if s.state.Load() != stateReady || len(matrix) == 0 {
		return []Match{}
	}
	matches := TopK(CosineAll(query, matrix), k)
	if matches == nil {
		return []Match{}
	}
	return matches
}

// Name identifies the query cache in maintenance logs.
func (s *Service) Name() string {
	return queryCacheName
}

// CleanupExpired sweeps the query embedding cache.
func (s *Service) CleanupExpired() int {
	if s.queryCache == nil {
		return 0
	}
	return s.queryCache.CleanupExpired()
}

// CacheStats returns query cache statistics, or nil when the cache is off.
func (s *Service) CacheStats() *cache.Stats {
	if s.queryCache == nil {
		return nil
	}
	st := s.queryCache.Stats()
	return &st
}
