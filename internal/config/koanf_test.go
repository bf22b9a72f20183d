// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with no config or env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(EnvFileEnvVar, "")
	for key := range envMappings {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Corpus.URL != DefaultCorpusURL {
		t.Errorf("Corpus.URL = %q, want %q", cfg.Corpus.URL, DefaultCorpusURL)
	}
	if cfg.Corpus.TTL != 30*time.Minute {
		t.Errorf("Corpus.TTL = %v, want 30m", cfg.Corpus.TTL)
	}
	if cfg.Recommend.DefaultMaxResults != 3 {
		t.Errorf("Recommend.DefaultMaxResults = %d, want 3", cfg.Recommend.DefaultMaxResults)
	}
	if cfg.Recommend.MinScore != 0.1 {
		t.Errorf("Recommend.MinScore = %v, want 0.1", cfg.Recommend.MinScore)
	}
	if cfg.Embedding.Provider != ProviderHashing {
		t.Errorf("Embedding.Provider = %q, want hashing", cfg.Embedding.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v, want nil", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"CORPUS_URL", "corpus.url"},
		{"EMBEDDING_PROVIDER", "embedding.provider"},
		{"OPENROUTER_API_KEY", "embedding.api_key"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("Security.CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}
}

func TestLoad_EnvVars(t *testing.T) {
	isolate(t)

	t.Setenv("CORPUS_URL", "file:///tmp/interventions.json")
	t.Setenv("CORPUS_TTL", "10m")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("RECOMMEND_MIN_SCORE", "0.2")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EMBEDDING_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.Corpus.URL != "file:///tmp/interventions.json" {
		t.Errorf("Corpus.URL = %q", cfg.Corpus.URL)
	}
	if cfg.Corpus.TTL != 10*time.Minute {
		t.Errorf("Corpus.TTL = %v, want 10m", cfg.Corpus.TTL)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.MinScore != 0.2 {
		t.Errorf("Recommend.MinScore = %v, want 0.2", cfg.Recommend.MinScore)
	}
	if cfg.Embedding.Enabled {
		t.Error("Embedding.Enabled = true, want false")
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoad_ConfigFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "custom.yaml")
	content := `
corpus:
  url: "https://corpus.example/interventions.json"
server:
  port: 7000
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.Corpus.URL != "https://corpus.example/interventions.json" {
		t.Errorf("Corpus.URL = %q, want file value", cfg.Corpus.URL)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want env override warn", cfg.Logging.Level)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_PORT=8123\nEMBEDDING_MODEL=dotenv-model\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("EMBEDDING_MODEL", "process-model")
	t.Cleanup(func() { os.Unsetenv("HTTP_PORT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123 from .env", cfg.Server.Port)
	}
	if cfg.Embedding.Model != "process-model" {
		t.Errorf("Embedding.Model = %q, want process environment to win", cfg.Embedding.Model)
	}
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvFileEnvVar, "/non/existent/.env")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for missing ENV_FILE")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"empty corpus url", func(c *Config) { c.Corpus.URL = "" }, "CORPUS_URL"},
		{"zero ttl", func(c *Config) { c.Corpus.TTL = 0 }, "CORPUS_TTL"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "bert" }, "EMBEDDING_PROVIDER"},
		{"openai without key", func(c *Config) { c.Embedding.Provider = ProviderOpenAI }, "EMBEDDING_API_KEY"},
		{"ollama without url", func(c *Config) { c.Embedding.Provider = ProviderOllama }, "EMBEDDING_BASE_URL"},
		{"disabled embedding skips checks", func(c *Config) {
			c.Embedding.Enabled = false
			c.Embedding.Provider = "bogus"
		}, ""},
		{"zero default results", func(c *Config) { c.Recommend.DefaultMaxResults = 0 }, "RECOMMEND_DEFAULT_MAX_RESULTS"},
		{"max below default", func(c *Config) { c.Recommend.MaxResults = 1 }, "RECOMMEND_MAX_RESULTS"},
		{"min score above one", func(c *Config) { c.Recommend.MinScore = 1.5 }, "RECOMMEND_MIN_SCORE"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
