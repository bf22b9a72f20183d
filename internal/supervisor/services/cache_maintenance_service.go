// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Cleaner drops expired cache entries. *corpus.Store and *embedding.Service
// implement it.
type Cleaner interface {
	Name() string
	CleanupExpired() int
}

// CacheMaintenanceService sweeps expired entries from each cleaner on an
// interval.
type CacheMaintenanceService struct {
	cleaners []Cleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheMaintenanceService creates the sweeper. A non-positive interval
// uses five minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheMaintenanceService(interval time.Duration, logger zerolog.Logger, cleaners ...Cleaner) *CacheMaintenanceService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheMaintenanceService{
		cleaners: cleaners,
		interval: interval,
		logger:   logger.With().Str("service", "cache-maintenance").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one cleanup pass and returns the total entries removed.
func (s *CacheMaintenanceService) Sweep() int {
	total := 0
	for _, c := range s.cleaners {
		n := c.CleanupExpired()
		if n > 0 {
			s.logger.Debug().Str("cache", c.Name()).Int("removed", n).Msg("expired cache entries removed")
		}
		total += n
	}
	return total
}

// String identifies the service in supervisor events.
func (s *CacheMaintenanceService) String() string {
	return "cache-maintenance"
}
