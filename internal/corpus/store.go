// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/cache"
	"github.com/tomtom215/georisk/internal/metrics"
)

const (
	cacheName = "corpus"
	cacheKey  = "interventions"

	// DefaultFailureBackoff is how long a previous corpus is re-served after a
	// failed fetch before the source is tried again.
	DefaultFailureBackoff = 30 * time.Second
)

// Embedder is the part of the embedding backend the store needs.
type Embedder interface {
	Available(ctx context.Context) bool
	GenerateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// StoreConfig tunes a Store.
type StoreConfig struct {
	// TTL is how long a fetched corpus is served before refetching.
	TTL time.Duration

	// FailureBackoff is how long the previous corpus is cached after a failed
	// fetch. Capped at TTL. Zero uses DefaultFailureBackoff.
	FailureBackoff time.Duration

	// EmbedRecords embeds every record after a fetch when the backend is available.
	EmbedRecords bool

	// Clock drives expiry. Nil uses the wall clock.
	Clock cache.Clock
}

// Stats describes the corpus currently held by a Store.
type Stats struct {
	Source         string      `json:"source"`
	Version        uint64      `json:"version"`
	Records        int         `json:"records"`
	HasEmbeddings  bool        `json:"has_embeddings"`
	EmbeddingModel string      `json:"embedding_model,omitempty"`
	FetchedAt      *time.Time  `json:"fetched_at,omitempty"`
	Cache          cache.Stats `json:"cache"`
}

// Store memoises the fetched corpus behind a TTL cache. Concurrent callers
// that find the cache empty share one fetch.
type Store struct {
	fetcher  Fetcher
	embedder Embedder
	cfg      StoreConfig
	clock    cache.Clock
	cache    *cache.TTL[*IndexedCorpus]
	logger   zerolog.Logger

	lastGood atomic.Pointer[IndexedCorpus]
	version  atomic.Uint64
}

// NewStore creates a Store. embedder may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(fetcher Fetcher, embedder Embedder, cfg StoreConfig, logger zerolog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	if cfg.FailureBackoff <= 0 {
		cfg.FailureBackoff = DefaultFailureBackoff
	}
	if cfg.FailureBackoff > cfg.TTL {
		cfg.FailureBackoff = cfg.TTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = cache.SystemClock
	}

	return &Store{
		fetcher:  fetcher,
		embedder: embedder,
		cfg:      cfg,
		clock:    clock,
		cache:    cache.New[*IndexedCorpus](cfg.TTL, cache.WithClock(clock), cache.WithName(cacheName)),
		logger:   logger.With().Str("component", "corpus_store").Str("source", fetcher.Source()).Logger(),
	}
}

// Current returns a live corpus, fetching one if the cached copy is missing
// or expired. It never fails: after a failed fetch it returns the last good
// corpus, or an empty one if nothing was ever loaded.
func (s *Store) Current(ctx context.Context) *IndexedCorpus {
	c, err := s.cache.GetOrLoad(ctx, cacheKey, s.load)
	if err == nil && c != nil {
		return c
	}

	prev := s.lastGood.Load()
	if prev == nil {
		return EmptyCorpus()
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		// Serve the previous corpus for a while rather than hitting a failing
		// source on every request.
		s.cache.SetWithTTL(cacheKey, prev, s.cfg.FailureBackoff)
	}
	return prev
}

// Refresh fetches a new corpus regardless of the cached one. It shares the
// cache's single-flight group with Current, so a refresh that overlaps an
// in-flight fetch waits for it instead of fetching twice. On failure the
// cached corpus is left untouched and the error is returned.
func (s *Store) Refresh(ctx context.Context) (*IndexedCorpus, error) {
	return s.cache.Reload(ctx, cacheKey, s.load)
}

// Invalidate drops the cached corpus and the fallback copy, so the next
// Current call fetches again. Reports whether a cached corpus was present.
func (s *Store) Invalidate() bool {
	s.lastGood.Store(nil)
	removed := s.cache.Invalidate(cacheKey)
	s.logger.Info().Bool("removed", removed).Msg("Corpus cache invalidated")
	return removed
}

// CleanupExpired removes an expired corpus entry from the cache.
func (s *Store) CleanupExpired() int {
	return s.cache.CleanupExpired()
}

// Name identifies the store in maintenance logs.
func (s *Store) Name() string {
	return cacheName
}

// Stats reports the served corpus and its cache entry.
func (s *Store) Stats() Stats {
	st := Stats{
		Source: s.fetcher.Source(),
		Cache:  s.cache.Stats(),
	}
	if c := s.lastGood.Load(); c != nil {
		meta := c.Meta()
		st.Version = meta.Version
		st.Records = c.Len()
		st.HasEmbeddings = c.HasEmbeddings()
		st.EmbeddingModel = meta.EmbeddingModel
		st.FetchedAt = &meta.FetchedAt
	}
	return st
}

// load fetches and indexes a corpus. It is the cache loader.
func (s *Store) load(ctx context.Context) (*IndexedCorpus, time.Duration, error) {
	start := time.Now()
	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		result := "transport_error"
		if IsDataShape(err) {
			result = "data_error"
		}
		metrics.RecordCorpusFetch(result, time.Since(start))
		s.logger.Warn().Err(err).Str("result", result).
			Bool("has_previous", s.lastGood.Load() != nil).
			Msg("Corpus fetch failed")
		return nil, 0, err
	}

	embeddings, model := s.embed(ctx, records)
	meta := Meta{
		Version:        s.version.Add(1),
		FetchedAt:      s.clock.Now(),
		Source:         s.fetcher.Source(),
		EmbeddingModel: model,
	}

	c, err := NewIndexedCorpus(records, embeddings, meta)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Discarding embeddings that do not align with records")
		c, _ = NewIndexedCorpus(records, nil, meta)
	}

	s.lastGood.Store(c)
	metrics.RecordCorpusFetch("success", time.Since(start))
	metrics.RecordCorpusActive(c.Len(), meta.Version, c.HasEmbeddings())

	s.logger.Info().
		Int("records", c.Len()).
		Uint64("version", meta.Version).
		Bool("embeddings", c.HasEmbeddings()).
		Dur("duration", time.Since(start)).
		Msg("Corpus loaded")

	return c, s.cfg.TTL, nil
}

// embed returns one row per record, or nil when embeddings are off,
// unavailable, or fail.
func (s *Store) embed(ctx context.Context, records []Record) ([][]float32, string) {
	if !s.cfg.EmbedRecords || s.embedder == nil || !s.embedder.Available(ctx) {
		return nil, ""
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].EmbeddingText()
	}

	matrix, err := s.embedder.GenerateEmbeddingsBatch(ctx, texts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Corpus embedding failed, continuing without vectors")
		return nil, ""
	}
	if len(matrix) == 0 {
		return nil, ""
	}
	return matrix, s.embedder.Model()
}
