// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

func TestClampTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Duration
	}{
		{0, MinFetchTimeout},
		{5 * time.Second, MinFetchTimeout},
		{15 * time.Second, 15 * time.Second},
		{time.Minute, MaxFetchTimeout},
	}
	for _, tt := range tests {
		if got := ClampTimeout(tt.in); got != tt.want {
			t.Errorf("ClampTimeout(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHTTPFetcher_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, 10*time.Second, zerolog.Nop())
	records, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
	if f.Source() != server.URL {
		t.Errorf("Source() = %q", f.Source())
	}
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, 10*time.Second, zerolog.Nop())
	_, err := f.Fetch(context.Background())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", te.StatusCode)
	}
}

func TestHTTPFetcher_DataShapeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"interventions": []}`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, 10*time.Second, zerolog.Nop())
	_, err := f.Fetch(context.Background())
	if !IsDataShape(err) {
		t.Fatalf("expected DataShapeError, got %v", err)
	}
}

func TestHTTPFetcher_BreakerOpensOnTransportFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, 10*time.Second, zerolog.Nop(),
		WithBreakerSettings(BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Hour}))

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background()); !IsTransport(err) {
			t.Fatalf("fetch %d: expected transport error, got %v", i, err)
		}
	}

	_, err := f.Fetch(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-circuit error, got %v", err)
	}
	if !IsTransport(err) {
		t.Error("open-circuit rejection should surface as a transport error")
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestHTTPFetcher_DataShapeDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.URL, 10*time.Second, zerolog.Nop(),
		WithBreakerSettings(BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Hour}))

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background()); !IsDataShape(err) {
			t.Fatalf("fetch %d: expected data shape error, got %v", i, err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hit %d times, want 3", got)
	}
}

func TestFileFetcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "interventions.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := NewFileFetcher(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}

	_, err = NewFileFetcher(filepath.Join(dir, "missing.json")).Fetch(context.Background())
	if !IsTransport(err) {
		t.Errorf("missing file should be a transport error, got %v", err)
	}
}

func TestNewFetcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		wantHTTP bool
		wantPath string
		wantErr  bool
	}{
		{name: "https", source: "https://example.test/db.json", wantHTTP: true},
		{name: "http", source: "http://localhost:9000/db.json", wantHTTP: true},
		{name: "file url", source: "file:///srv/data/db.json", wantPath: "/srv/data/db.json"},
		{name: "bare path", source: "./testdata/db.json", wantPath: "./testdata/db.json"},
		{name: "empty", source: "  ", wantErr: true},
		{name: "unsupported scheme", source: "ftp://example.test/db.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := NewFetcher(tt.source, 0, zerolog.Nop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFetcher() error = %v", err)
			}
			switch v := f.(type) {
			case *HTTPFetcher:
				if !tt.wantHTTP {
					t.Errorf("got HTTPFetcher for %q", tt.source)
				}
			case *FileFetcher:
				if tt.wantHTTP {
					t.Errorf("got FileFetcher for %q", tt.source)
				}
				if v.Source() != tt.wantPath {
					t.Errorf("path = %q, want %q", v.Source(), tt.wantPath)
				}
			}
		})
	}
}
