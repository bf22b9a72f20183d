// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// EmbeddingInitializer initializes the embedding backend.
// *embedding.Service implements it.
type EmbeddingInitializer interface {
	Init(ctx context.Context) error
}

// EmbeddingWarmupService initializes the embedding backend once at startup
// so the first request does not pay for it. An unavailable backend is not a
// failure: the engine ranks with keyword scores instead.
type EmbeddingWarmupService struct {
	backend EmbeddingInitializer
	logger  zerolog.Logger
}

// NewEmbeddingWarmupService creates the warm-up service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmbeddingWarmupService(backend EmbeddingInitializer, logger zerolog.Logger) *EmbeddingWarmupService {
	return &EmbeddingWarmupService{
		backend: backend,
		logger:  logger.With().Str("service", "embedding-warmup").Logger(),
	}
}

// Serve implements suture.Service. It runs once and asks the supervisor not
// to restart it.
func (s *EmbeddingWarmupService) Serve(ctx context.Context) error {
	if err := s.backend.Init(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("embedding backend unavailable, keyword scoring only")
	} else {
		s.logger.Info().Msg("embedding backend ready")
	}
	return suture.ErrDoNotRestart
}

// String identifies the service in supervisor events.
func (s *EmbeddingWarmupService) String() string {
	return "embedding-warmup"
}
