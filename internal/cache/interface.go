// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package cache provides a generic in-memory TTL cache with single-flight loading.
//
// Expiry is lazy: Get never returns an expired entry and removes it on sight.
// CleanupExpired sweeps the whole map and is driven by a supervised
// maintenance service rather than a goroutine owned by the cache.
//
// The clock is injectable so that expiry can be tested without sleeping:
//
//	clock := cache.NewManualClock(t0)
//	c := cache.New[string](30*time.Minute, cache.WithClock(clock))
//	c.Set("k", "v")
//	clock.Advance(31 * time.Minute)
//	_, ok := c.Get("k") // false
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// ManualClock is a Clock that only moves when told to. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set moves the clock to t.
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	clock Clock
	name  string
}

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithName labels the cache in Prometheus metrics. Unnamed caches are not exported.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
