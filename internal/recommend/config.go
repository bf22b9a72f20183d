// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"fmt"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Hybrid weights apply when vector scores are usable.
	Hybrid Weights `json:"hybrid"`

	// KeywordOnly weights apply otherwise, and always on the fallback path.
	// Its Vector weight must be zero.
	KeywordOnly Weights `json:"keyword_only"`

	// MinScore drops candidates whose combined score is below it.
	MinScore float64 `json:"min_score"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// Weights are applied as given; they are not normalized.
type Weights struct {
	Vector  float64 `json:"vector"`
	Keyword float64 `json:"keyword"`
	Context float64 `json:"context"`
}

// Combine returns the weighted sum of a breakdown's components.
func (w Weights) Combine(s ScoreBreakdown) float64 {
	if w.Vector == 0 {
		return w.Keyword*s.Keyword + w.Context*s.Context
	}
	return w.Vector*s.Vector + w.Keyword*s.Keyword + w.Context*s.Context
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of results when the caller gives none.
	// Default: 3.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 50.
	MaxK int `json:"max_k"`
}

// DefaultConfig returns the production ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		Hybrid:      Weights{Vector: 0.5, Keyword: 0.3, Context: 0.2},
		KeywordOnly: Weights{Keyword: 0.7, Context: 0.3},
		MinScore:    0.1,
		Limits: LimitsConfig{
			DefaultK: 3,
			MaxK:     50,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, w := range map[string]Weights{"hybrid": c.Hybrid, "keyword_only": c.KeywordOnly} {
		if w.Vector < 0 || w.Keyword < 0 || w.Context < 0 {
			return fmt.Errorf("%s weights must be non-negative, got %+v", name, w)
		}
	}
	if c.KeywordOnly.Vector != 0 {
		return fmt.Errorf("keyword_only.vector must be 0, got %v", c.KeywordOnly.Vector)
	}
	if c.MinScore < 0 {
		return fmt.Errorf("min_score must be non-negative, got %v", c.MinScore)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
