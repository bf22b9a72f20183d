// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/corpus"
)

// CorpusRefresher reloads the intervention corpus. *corpus.Store implements it.
type CorpusRefresher interface {
	Refresh(ctx context.Context) (*corpus.IndexedCorpus, error)
}

// CorpusRefreshConfig controls the refresh schedule.
type CorpusRefreshConfig struct {
	// RefreshOnStart loads the corpus as soon as the service starts.
	RefreshOnStart bool

	// Interval between scheduled refreshes. Default: 1h
	Interval time.Duration

	// Timeout for a single refresh. Default: corpus.MaxFetchTimeout
	Timeout time.Duration
}

// CorpusRefreshService keeps the corpus warm by refreshing it on a schedule.
// Refresh failures are logged and retried on the next tick; the store keeps
// serving its last good corpus meanwhile.
type CorpusRefreshService struct {
	store  CorpusRefresher
	config CorpusRefreshConfig
	logger zerolog.Logger
}

// NewCorpusRefreshService creates the refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCorpusRefreshService(store CorpusRefresher, cfg CorpusRefreshConfig, logger zerolog.Logger) *CorpusRefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = corpus.MaxFetchTimeout
	}
	return &CorpusRefreshService{
		store:  store,
		config: cfg,
		logger: logger.With().Str("service", "corpus-refresh").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CorpusRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refresh_on_start", s.config.RefreshOnStart).
		Dur("interval", s.config.Interval).
		Msg("corpus refresh service starting")

	if s.config.RefreshOnStart {
		s.refresh(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("corpus refresh service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *CorpusRefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	c, err := s.store.Refresh(refreshCtx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("corpus refresh failed, keeping previous corpus")
		}
		return
	}

	s.logger.Info().
		Int("records", c.Len()).
		Uint64("version", c.Version()).
		Bool("has_embeddings", c.HasEmbeddings()).
		Dur("duration", time.Since(start)).
		Msg("corpus refreshed")
}

// String identifies the service in supervisor events.
func (s *CorpusRefreshService) String() string {
	return "corpus-refresh"
}
