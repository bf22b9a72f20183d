// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Fetch timeout bounds for remote sources.
const (
	MinFetchTimeout = 10 * time.Second
	MaxFetchTimeout = 30 * time.Second

	// maxPayloadBytes caps how much of a response body is read.
	maxPayloadBytes = 32 << 20
)

// Fetcher retrieves the full list of intervention records.
type Fetcher interface {
	// Fetch returns the decoded records or a *TransportError / *DataShapeError.
	Fetch(ctx context.Context) ([]Record, error)

	// Source names where records come from, for logs and stats.
	Source() string
}

// ClampTimeout bounds a remote fetch timeout to [MinFetchTimeout, MaxFetchTimeout].
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d < MinFetchTimeout:
		return MinFetchTimeout
	case d > MaxFetchTimeout:
		return MaxFetchTimeout
	default:
		return d
	}
}

// HTTPFetcher performs a single GET against a corpus URL.
type HTTPFetcher struct {
	client  *http.Client
	url     string
	breaker *gobreaker.CircuitBreaker[[]Record]
	logger  zerolog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the HTTP client. The client's own Timeout is kept as is.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBreakerSettings replaces the circuit breaker tuning.
func WithBreakerSettings(s BreakerSettings) HTTPOption {
	return func(f *HTTPFetcher) {
		f.breaker = newBreaker(f.breaker.Name(), s, f.logger)
	}
}

// NewHTTPFetcher creates a fetcher for rawURL with a timeout clamped to
// [MinFetchTimeout, MaxFetchTimeout].
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHTTPFetcher(rawURL string, timeout time.Duration, logger zerolog.Logger, opts ...HTTPOption) *HTTPFetcher {
	logger = logger.With().Str("component", "corpus_fetcher").Str("source", rawURL).Logger()
	f := &HTTPFetcher{
		client:  &http.Client{Timeout: ClampTimeout(timeout)},
		url:     rawURL,
		breaker: newBreaker("corpus-source", DefaultBreakerSettings(), logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source returns the corpus URL.
func (f *HTTPFetcher) Source() string { return f.url }

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Record, error) {
	return executeWithBreaker(f.breaker, f.url, func() ([]Record, error) {
		body, err := f.get(ctx)
		if err != nil {
			return nil, err
		}
		return DecodePayload(body)
	})
}

func (f *HTTPFetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, &TransportError{Source: f.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{Source: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{Source: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &TransportError{Source: f.url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return body, nil
}

// FileFetcher reads records from a local JSON file.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Source returns the file path.
func (f *FileFetcher) Source() string { return f.path }

// Fetch implements Fetcher. ctx is only checked before reading.
func (f *FileFetcher) Fetch(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Source: f.path, Err: err}
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &TransportError{Source: f.path, Err: err}
	}
	return DecodePayload(data)
}

// NewFetcher picks an implementation from source: http(s) URLs use
// HTTPFetcher, file:// URLs and bare paths use FileFetcher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewFetcher(source string, timeout time.Duration, logger zerolog.Logger) (Fetcher, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("corpus source is empty")
	}

	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return NewFileFetcher(source), nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPFetcher(source, timeout, logger), nil
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + u.Path
		}
		return NewFileFetcher(path), nil
	default:
		return nil, fmt.Errorf("unsupported corpus source scheme %q", u.Scheme)
	}
}
