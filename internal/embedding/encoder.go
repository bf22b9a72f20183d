// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Providers.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderHashing = "hashing"
)

// Default models per provider.
const (
	DefaultOpenAIModel  = "text-embedding-3-small"
	DefaultOllamaModel  = "nomic-embed-text"
	DefaultHashingModel = "hashing-bow"

	DefaultOllamaURL         = "http://localhost:11434"
	DefaultHashingDimensions = 384
)

// Encoder turns texts into vectors. Implementations return exactly one row
// per input text, in input order.
type Encoder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Provider() string
}

// EncoderFactory builds the provider encoder during lazy initialization.
type EncoderFactory func(cfg Config) (Encoder, error)

// Config configures the embedding Service.
type Config struct {
	Enabled    bool
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
	Timeout    time.Duration

	// RateLimit caps remote calls per second. 0 means unlimited.
	RateLimit float64

	// QueryCacheTTL memoizes single-text embeddings. 0 disables the cache.
	QueryCacheTTL time.Duration

	// ProbeOnInit embeds a probe text during initialization.
	ProbeOnInit bool
}

// withDefaults fills in provider defaults.
func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
	case ProviderOllama:
		if c.Model == "" {
			c.Model = DefaultOllamaModel
		}
		if c.BaseURL == "" {
			c.BaseURL = DefaultOllamaURL
		}
	case ProviderHashing:
		if c.Model == "" {
			c.Model = DefaultHashingModel
		}
		if c.Dimensions <= 0 {
			c.Dimensions = DefaultHashingDimensions
		}
	}
	return c
}

// NewEncoder builds the encoder named by cfg.Provider.
func NewEncoder(cfg Config) (Encoder, error) {
	cfg = cfg.withDefaults()
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai provider requires an API key or base URL")
		}
		return NewOpenAIEncoder(cfg.APIKey, cfg.Model,
			WithBaseURL(cfg.BaseURL),
			WithDimensions(cfg.Dimensions),
			WithHTTPClient(client),
		), nil
	case ProviderOllama:
		return NewOllamaEncoder(cfg.BaseURL, cfg.Model, client), nil
	case ProviderHashing:
		return NewHashingEncoder(cfg.Dimensions), nil
	case "":
		return nil, fmt.Errorf("no embedding provider configured")
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
