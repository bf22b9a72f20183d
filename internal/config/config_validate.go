// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Embedding providers understood by internal/embedding.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderHashing = "hashing"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCorpus(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCorpus() error {
	if strings.TrimSpace(c.Corpus.URL) == "" {
		return fmt.Errorf("CORPUS_URL is required")
	}
	if strings.HasPrefix(c.Corpus.URL, "http://") || strings.HasPrefix(c.Corpus.URL, "https://") {
		if _, err := url.ParseRequestURI(c.Corpus.URL); err != nil {
			return fmt.Errorf("CORPUS_URL is not a valid URL: %w", err)
		}
	}
	if c.Corpus.Timeout <= 0 {
		return fmt.Errorf("CORPUS_TIMEOUT must be positive, got %v", c.Corpus.Timeout)
	}
	if c.Corpus.TTL <= 0 {
		return fmt.Errorf("CORPUS_TTL must be positive, got %v", c.Corpus.TTL)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if !c.Embedding.Enabled {
		return nil
	}

	switch c.Embedding.Provider {
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("EMBEDDING_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	case ProviderOllama:
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("EMBEDDING_BASE_URL is required when EMBEDDING_PROVIDER=ollama")
		}
	case ProviderHashing:
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be one of openai, ollama, hashing, got %q", c.Embedding.Provider)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("EMBEDDING_MODEL is required when embeddings are enabled")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.Provider == ProviderHashing && c.Embedding.Dimensions == 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS is required for the hashing provider")
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("EMBEDDING_RATE_LIMIT must not be negative, got %v", c.Embedding.RateLimit)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultMaxResults <= 0 {
		return fmt.Errorf("RECOMMEND_DEFAULT_MAX_RESULTS must be positive, got %d", r.DefaultMaxResults)
	}
	if r.MaxResults < r.DefaultMaxResults {
		return fmt.Errorf("RECOMMEND_MAX_RESULTS (%d) must be >= RECOMMEND_DEFAULT_MAX_RESULTS (%d)",
			r.MaxResults, r.DefaultMaxResults)
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return fmt.Errorf("RECOMMEND_MIN_SCORE must be between 0 and 1, got %v", r.MinScore)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
