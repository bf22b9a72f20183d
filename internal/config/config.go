// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package config loads GeoRisk configuration from defaults, an optional YAML
// file, an optional .env file, and environment variables.
//
// Precedence (highest wins): environment > config file > defaults. A .env
// file in the working directory (or ENV_FILE) is loaded into the process
// environment first without overriding variables that are already set.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Corpus    CorpusConfig    `koanf:"corpus"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CorpusConfig describes where intervention records come from.
type CorpusConfig struct {
	// URL is an http(s) URL, a file:// URL, or a bare filesystem path.
	URL string `koanf:"url"`

	// Timeout bounds a single fetch. Clamped to [10s, 30s] for http sources.
	Timeout time.Duration `koanf:"timeout"`

	// TTL is how long a fetched corpus is served before a refresh.
	TTL time.Duration `koanf:"ttl"`

	// EmbedRecords controls whether records are embedded after each fetch.
	EmbedRecords bool `koanf:"embed_records"`
}

// EmbeddingConfig configures the optional semantic backend.
type EmbeddingConfig struct {
	Enabled bool `koanf:"enabled"`

	// Provider is one of: openai, ollama, hashing.
	Provider string `koanf:"provider"`

	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`

	// Dimensions requests a vector size from providers that support it
	// and sets the size of the hashing encoder. 0 = provider default.
	Dimensions int `koanf:"dimensions"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the maximum remote embedding calls per second. 0 = unlimited.
	RateLimit float64 `koanf:"rate_limit"`

	// QueryCacheTTL memoizes query embeddings. 0 disables memoization.
	QueryCacheTTL time.Duration `koanf:"query_cache_ttl"`

	// ProbeOnInit embeds a short probe text during initialization so that a
	// misconfigured provider is detected before the first request.
	ProbeOnInit bool `koanf:"probe_on_init"`
}

// RecommendConfig tunes ranking.
type RecommendConfig struct {
	DefaultMaxResults int     `koanf:"default_max_results"`
	MaxResults        int     `koanf:"max_results"`
	MinScore          float64 `koanf:"min_score"`
}

// CacheConfig controls background cache maintenance.
type CacheConfig struct {
	// CleanupInterval sweeps expired entries. 0 disables the sweeper.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// RefreshInterval proactively refreshes the corpus. 0 disables it.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds request-level protections.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
