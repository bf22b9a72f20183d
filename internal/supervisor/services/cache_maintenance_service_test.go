// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/cache"
)

type fakeCleaner struct {
	name    string
	removed int
	calls   atomic.Int32
}

func (f *fakeCleaner) Name() string { return f.name }

func (f *fakeCleaner) CleanupExpired() int {
	f.calls.Add(1)
	return f.removed
}

func TestCacheMaintenanceService_Sweep(t *testing.T) {
	t.Parallel()

	a := &fakeCleaner{name: "corpus", removed: 1}
	b := &fakeCleaner{name: "query_embeddings", removed: 4}
	svc := NewCacheMaintenanceService(time.Minute, zerolog.Nop(), a, b)

	if got := svc.Sweep(); got != 5 {
		t.Errorf("Sweep() = %d, want 5", got)
	}
	if a.calls.Load() != 1 || b.calls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls.Load(), b.calls.Load())
	}
}

func TestCacheMaintenanceService_SweepsRealCache(t *testing.T) {
	t.Parallel()

	clock := cache.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.New[string](time.Minute, cache.WithClock(clock), cache.WithName("test"))
	c.Set("a", "1")
	c.Set("b", "2")
	clock.Advance(2 * time.Minute)

	svc := NewCacheMaintenanceService(time.Minute, zerolog.Nop(), &namedCache{name: "test", c: c})
	if got := svc.Sweep(); got != 2 {
		t.Errorf("Sweep() = %d, want 2", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

type namedCache struct {
	name string
	c    *cache.TTL[string]
}

func (n *namedCache) Name() string        { return n.name }
func (n *namedCache) CleanupExpired() int { return n.c.CleanupExpired() }

func TestCacheMaintenanceService_Serve(t *testing.T) {
	t.Parallel()

	cleaner := &fakeCleaner{name: "corpus"}
	svc := NewCacheMaintenanceService(5*time.Millisecond, zerolog.Nop(), cleaner)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if cleaner.calls.Load() == 0 {
		t.Error("cleaner was never swept")
	}
}

func TestNewCacheMaintenanceService_DefaultInterval(t *testing.T) {
	t.Parallel()

	svc := NewCacheMaintenanceService(0, zerolog.Nop())
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", svc.interval)
	}
	if svc.String() != "cache-maintenance" {
		t.Errorf("String() = %q", svc.String())
	}
}
