// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/georisk/config.yaml",
	"/etc/georisk/config.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// EnvFileEnvVar overrides the .env file path.
	EnvFileEnvVar = "ENV_FILE"

	// DefaultCorpusURL is the published intervention database.
	DefaultCorpusURL = "https://geo-risk-spotspot-geojson.s3.us-east-1.amazonaws.com/interventions/interventions-db.json"
)

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			URL:          DefaultCorpusURL,
			Timeout:      30 * time.Second,
			TTL:          30 * time.Minute,
			EmbedRecords: true,
		},
		Embedding: EmbeddingConfig{
			Enabled:       true,
			Provider:      "hashing",
			Model:         "hashing-bow",
			Dimensions:    384,
			Timeout:       30 * time.Second,
			RateLimit:     0,
			QueryCacheTTL: 30 * time.Minute,
			ProbeOnInit:   true,
		},
		Recommend: RecommendConfig{
			DefaultMaxResults: 3,
			MaxResults:        50,
			MinScore:          0.1,
		},
		Cache: CacheConfig{
			CleanupInterval: 5 * time.Minute,
			RefreshInterval: 0,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"https://geo-risk-spotter.vercel.app", "http://localhost:5173"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File: optional YAML
//  3. Environment Variables (after an optional .env file is applied)
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv applies a .env file to the process environment. Variables that
// are already set win. A missing default .env file is not an error; a missing
// file named by ENV_FILE is.
func loadDotEnv() error {
	path := os.Getenv(EnvFileEnvVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Corpus
	"corpus_url":           "corpus.url",
	"corpus_timeout":       "corpus.timeout",
	"corpus_ttl":           "corpus.ttl",
	"corpus_embed_records": "corpus.embed_records",

	// Embedding backend
	"embedding_enabled":         "embedding.enabled",
	"embedding_provider":        "embedding.provider",
	"embedding_model":           "embedding.model",
	"embedding_base_url":        "embedding.base_url",
	"embedding_api_key":         "embedding.api_key",
	"openrouter_api_key":        "embedding.api_key",
	"embedding_dimensions":      "embedding.dimensions",
	"embedding_timeout":         "embedding.timeout",
	"embedding_rate_limit":      "embedding.rate_limit",
	"embedding_query_cache_ttl": "embedding.query_cache_ttl",
	"embedding_probe_on_init":   "embedding.probe_on_init",

	// Ranking
	"recommend_default_max_results": "recommend.default_max_results",
	"recommend_max_results":         "recommend.max_results",
	"recommend_min_score":           "recommend.min_score",

	// Cache maintenance
	"cache_cleanup_interval": "cache.cleanup_interval",
	"cache_refresh_interval": "cache.refresh_interval",

	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
//   - CORPUS_URL -> corpus.url
//   - EMBEDDING_PROVIDER -> embedding.provider
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
