// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/georisk/internal/metrics"
)

// DefaultTTL is used when New is given a non-positive ttl.
const DefaultTTL = 1800 * time.Second

// Entry is a cached value with the time it was stored and how long it lives.
type Entry[T any] struct {
	Data      T
	CreatedAt time.Time
	MaxAge    time.Duration
}

// IsExpired reports whether the entry is older than its MaxAge at now.
// An entry exactly MaxAge old is still live.
func (e Entry[T]) IsExpired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.MaxAge
}

// Age returns how long ago the entry was stored.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// EntryStats describes one key in Stats.
type EntryStats struct {
	Key           string  `json:"key"`
	AgeSeconds    float64 `json:"age_seconds"`
	MaxAgeSeconds float64 `json:"max_age"`
	Expired       bool    `json:"is_expired"`
}

// Stats is a point-in-time snapshot of a cache.
type Stats struct {
	Name           string       `json:"name,omitempty"`
	TotalEntries   int          `json:"total_entries"`
	ActiveEntries  int          `json:"active_entries"`
	ExpiredEntries int          `json:"expired_entries"`
	Hits           int64        `json:"hits"`
	Misses         int64        `json:"misses"`
	Evictions      int64        `json:"evictions"`
	Entries        []EntryStats `json:"entries"`
}

// TTL is a thread-safe map of string keys to values that expire.
type TTL[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	ttl     time.Duration
	clock   Clock
	name    string

	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a cache whose entries live for ttl unless stored with SetWithTTL.
func New[T any](ttl time.Duration, opts ...Option) *TTL[T] {
	o := options{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{
		entries: make(map[string]Entry[T]),
		ttl:     ttl,
		clock:   o.clock,
		name:    o.name,
	}
}

// MaxAge returns the ttl applied by Set.
func (c *TTL[T]) MaxAge() time.Duration {
	return c.ttl
}

// Get returns the live value for key. An expired entry is removed and reported absent.
func (c *TTL[T]) Get(key string) (T, bool) {
	v, ok := c.lookup(key)
	if ok {
		c.recordHit()
	} else {
		c.recordMiss()
	}
	return v, ok
}

// lookup is Get without hit/miss accounting.
func (c *TTL[T]) lookup(key string) (T, bool) {
	var zero T
	now := c.clock.Now()

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return zero, false
	}
	if entry.IsExpired(now) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if current, still := c.entries[key]; still && current.IsExpired(now) {
			delete(c.entries, key)
			c.recordEvictions(1)
		}
		c.mu.Unlock()
		c.updateSize()
		return zero, false
	}
	return entry.Data, true
}

// Set stores value under key with the default ttl.
func (c *TTL[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key. A non-positive ttl uses the default.
func (c *TTL[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.entries[key] = Entry[T]{
		Data:      value,
		CreatedAt: c.clock.Now(),
		MaxAge:    ttl,
	}
	c.mu.Unlock()
	c.updateSize()
}

// Invalidate removes key and reports whether an entry was present.
func (c *TTL[T]) Invalidate(key string) bool {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	c.updateSize()
	return existed
}

// Clear removes every entry and returns how many were removed.
func (c *TTL[T]) Clear() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()
	c.updateSize()
	return n
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (c *TTL[T]) CleanupExpired() int {
	now := c.clock.Now()
	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.recordEvictions(removed)
	}
	c.updateSize()
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot including per-key age. Entries are sorted by key.
func (c *TTL[T]) Stats() Stats {
	now := c.clock.Now()

	c.mu.RLock()
	entries := make([]EntryStats, 0, len(c.entries))
	expired := 0
	for key, entry := range c.entries {
		isExpired := entry.IsExpired(now)
		if isExpired {
			expired++
		}
		entries = append(entries, EntryStats{
			Key:           key,
			AgeSeconds:    entry.Age(now).Seconds(),
			MaxAgeSeconds: entry.MaxAge.Seconds(),
			Expired:       isExpired,
		})
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Stats{
		Name:           c.name,
		TotalEntries:   len(entries),
		ActiveEntries:  len(entries) - expired,
		ExpiredEntries: expired,
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Evictions:      c.evictions.Load(),
		Entries:        entries,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *TTL[T]) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses) * 100.0
}

// LoadFunc produces a value for a missing key and the ttl to store it with.
// A non-positive ttl uses the cache default.
type LoadFunc[T any] func(ctx context.Context) (T, time.Duration, error)

// GetOrLoad returns the live value for key or runs load to produce it.
// Concurrent callers for the same key share a single load. A load error is
// returned to every waiter and nothing is stored.
//
// load runs with ctx's values but not its cancellation. The caller stops
// waiting when ctx ends; the load itself carries on for the other waiters.
func (c *TTL[T]) GetOrLoad(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	return c.do(ctx, key, load, false)
}

// Reload runs load for key even when a live entry exists and stores the
// result. It shares the single-flight group with GetOrLoad, so a reload that
// overlaps an in-flight load for the same key waits for that load instead of
// starting another. On error the existing entry is left in place.
func (c *TTL[T]) Reload(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	return c.do(ctx, key, load, true)
}

func (c *TTL[T]) do(ctx context.Context, key string, load LoadFunc[T], force bool) (T, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if !force {
			if v, ok := c.lookup(key); ok {
				return v, nil
			}
		}
		v, ttl, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, v, ttl)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func (c *TTL[T]) recordHit() {
	c.hits.Add(1)
	if c.name != "" {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	}
}

func (c *TTL[T]) recordMiss() {
	c.misses.Add(1)
	if c.name != "" {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
}

func (c *TTL[T]) recordEvictions(n int) {
	c.evictions.Add(int64(n))
	if c.name != "" {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
	}
}

func (c *TTL[T]) updateSize() {
	if c.name != "" {
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(c.Len()))
	}
}

// GenerateKey creates a cache key from a namespace and parameters.
func GenerateKey(namespace string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", namespace, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", namespace, hash[:16])
}
