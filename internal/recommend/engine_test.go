// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
	"github.com/tomtom215/georisk/internal/logging"
)

const testModel = "fake-model"

type staticSource struct {
	corpus *corpus.IndexedCorpus
	calls  atomic.Int32
}

func (s *staticSource) Current(context.Context) *corpus.IndexedCorpus {
	s.calls.Add(1)
	return s.corpus
}

// fakeBackend embeds every query as a fixed vector.
type fakeBackend struct {
	available bool
	model     string
	query     []float32
	queryErr  error
	scores    []float64 // overrides ComputeSimilarity when set

	mu         sync.Mutex
	lastQuery  string
	embedCalls atomic.Int32
}

func (b *fakeBackend) Available(context.Context) bool { return b.available }
func (b *fakeBackend) Model() string                  { return b.model }

func (b *fakeBackend) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	b.embedCalls.Add(1)
	b.mu.Lock()
	b.lastQuery = text
	b.mu.Unlock()
	if b.queryErr != nil {
		return nil, b.queryErr
	}
	return b.query, nil
}

func (b *fakeBackend) GenerateEmbeddingsBatch(context.Context, []string) ([][]float32, error) {
	return nil, nil
}

func (b *fakeBackend) ComputeSimilarity(query []float32, matrix [][]float32) []float64 {
	if b.scores != nil {
		return b.scores
	}
	return embedding.CosineAll(query, matrix)
}

func (b *fakeBackend) FindMostSimilar(query []float32, matrix [][]float32, k int) []embedding.Match {
	return embedding.TopK(b.ComputeSimilarity(query, matrix), k)
}

func (b *fakeBackend) LastQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

func diabetesRecord() corpus.Record {
	return corpus.Record{
		ID:                 "dpp",
		Title:              "Diabetes Prevention Program",
		Category:           "Community Program",
		HealthIssues:       corpus.StringSet{"diabetes"},
		Description:        "Lifestyle coaching to reduce blood glucose",
		ImplementationCost: "low",
		EvidenceLevel:      "high",
		Keywords:           corpus.StringSet{"diabetes", "blood_sugar"},
	}
}

func unrelatedRecord() corpus.Record {
	return corpus.Record{
		ID:                 "sealants",
		Title:              "School Dental Sealants",
		Category:           "Clinical",
		HealthIssues:       corpus.StringSet{"oral health"},
		Description:        "Sealant application in schools",
		ImplementationCost: "high",
		EvidenceLevel:      "low",
		Keywords:           corpus.StringSet{"dental"},
	}
}

func endToEndProfile() HealthProfile {
	return NewHealthProfile("10001", map[string]float64{
		IndicatorDiabetes:   25.8,
		IndicatorObesity:    38.4,
		IndicatorInactivity: 32.1,
		IndicatorSmoking:    12.3,
		IndicatorBPHigh:     42.7,
		IndicatorFoodInsec:  18.9,
		IndicatorAccess:     28.4,
	})
}

func newTestCorpus(t *testing.T, records []corpus.Record, embeddings [][]float32) *corpus.IndexedCorpus {
	t.Helper()
	meta := corpus.Meta{Version: 1, Source: "test"}
	if embeddings != nil {
		meta.EmbeddingModel = testModel
	}
	c, err := corpus.NewIndexedCorpus(records, embeddings, meta)
	if err != nil {
		t.Fatalf("NewIndexedCorpus: %v", err)
	}
	return c
}

func newTestEngine(t *testing.T, c *corpus.IndexedCorpus, backend embedding.Backend) *Engine {
	t.Helper()
	e, err := NewEngine(nil, &staticSource{corpus: c}, backend, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil corpus source")
	}

	cfg := DefaultConfig()
	cfg.Limits.DefaultK = 0
	if _, err := NewEngine(cfg, &staticSource{corpus: corpus.EmptyCorpus()}, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestEngine_EndToEndDiabetesProfile(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{unrelatedRecord(), diabetesRecord()}, nil)
	e := newTestEngine(t, c, nil)

	recs := e.GetRecommendations(context.Background(), endToEndProfile(), "", 0)
	if len(recs) == 0 {
		t.Fatal("expected at least one recommendation")
	}

	first := recs[0]
	if first.ID != "dpp" || first.Rank != 1 {
		t.Fatalf("first = %s rank %d, want dpp rank 1", first.ID, first.Rank)
	}
	if first.Scores.Combined < 0.1 {
		t.Errorf("combined = %v, want >= 0.1", first.Scores.Combined)
	}
	// keyword capped at 1.0, context 0.2 (low cost) + 0.2 (high evidence)
	if !approxEqual(first.Scores.Keyword, 1.0) || !approxEqual(first.Scores.Context, 0.4) {
		t.Errorf("scores = %+v", first.Scores)
	}
	if !approxEqual(first.Scores.Combined, 0.82) {
		t.Errorf("combined = %v, want 0.82", first.Scores.Combined)
	}
	for _, r := range recs[1:] {
		if r.ID == "sealants" && r.Scores.Combined > first.Scores.Combined {
			t.Errorf("unrelated record outranks diabetes record: %+v", r.Scores)
		}
	}
}

func TestEngine_BackendUnavailableUsesKeywordFormula(t *testing.T) {
	t.Parallel()

	records := []corpus.Record{diabetesRecord(), unrelatedRecord()}
	third := diabetesRecord()
	third.ID = "walk"
	third.Title = "Community Walking Groups"
	third.HealthIssues = corpus.StringSet{"physical inactivity"}
	third.Keywords = corpus.StringSet{"walking"}
	third.ImplementationCost = "medium"
	records = append(records, third)

	c := newTestCorpus(t, records, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	backend := &fakeBackend{available: false, model: testModel, query: []float32{1, 0}}
	e := newTestEngine(t, c, backend)

	resp := e.Recommend(context.Background(), Request{
		Profile:    endToEndProfile(),
		Query:      "diabetes walking",
		MaxResults: 10,
	})

	if resp.Metadata.Method != MethodKeyword {
		t.Errorf("Method = %s, want %s", resp.Metadata.Method, MethodKeyword)
	}
	if backend.embedCalls.Load() != 0 {
		t.Errorf("GenerateEmbedding called %d times, want 0", backend.embedCalls.Load())
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, r := range resp.Items {
		if r.Scores.Vector != 0 {
			t.Errorf("%s vector = %v, want 0", r.ID, r.Scores.Vector)
		}
		want := 0.7*r.Scores.Keyword + 0.3*r.Scores.Context
		if r.Scores.Combined != want {
			t.Errorf("%s combined = %v, want exactly %v", r.ID, r.Scores.Combined, want)
		}
	}
}

func TestEngine_HybridScoring(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{diabetesRecord(), unrelatedRecord()}, [][]float32{{1, 0}, {0, 1}})
	backend := &fakeBackend{available: true, model: testModel, query: []float32{0, 1}}
	e := newTestEngine(t, c, backend)

	profile := endToEndProfile()
	resp := e.Recommend(context.Background(), Request{Profile: profile, MaxResults: 5})

	if resp.Metadata.Method != MethodHybrid {
		t.Fatalf("Method = %s, want %s", resp.Metadata.Method, MethodHybrid)
	}
	if !resp.Metadata.QueryDerived || resp.Metadata.Query != DeriveQuery(profile) {
		t.Errorf("metadata query = %q derived=%v", resp.Metadata.Query, resp.Metadata.QueryDerived)
	}
	if got := backend.LastQuery(); got != DeriveQuery(profile) {
		t.Errorf("backend query = %q, want derived query", got)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(resp.Items))
	}

	// sealants: 0.5*1 + 0.3*0 + 0.2*0 = 0.5
	// dpp:      0.5*0 + 0.3*1 + 0.2*0.4 = 0.38
	if resp.Items[0].ID != "sealants" || !approxEqual(resp.Items[0].Scores.Combined, 0.5) {
		t.Errorf("first = %s %+v, want sealants 0.5", resp.Items[0].ID, resp.Items[0].Scores)
	}
	if resp.Items[1].ID != "dpp" || !approxEqual(resp.Items[1].Scores.Combined, 0.38) {
		t.Errorf("second = %s %+v, want dpp 0.38", resp.Items[1].ID, resp.Items[1].Scores)
	}
	if !approxEqual(resp.Items[0].Scores.Vector, 1) {
		t.Errorf("vector = %v, want 1", resp.Items[0].Scores.Vector)
	}
}

func TestEngine_VectorScoresNotUsable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		backend    *fakeBackend
		embeddings [][]float32
		wantCalls  int32
	}{
		{
			name:       "nil backend",
			embeddings: [][]float32{{1, 0}, {0, 1}},
		},
		{
			name:      "corpus without embeddings",
			backend:   &fakeBackend{available: true, model: testModel, query: []float32{1, 0}},
			wantCalls: 0,
		},
		{
			name:       "model mismatch",
			backend:    &fakeBackend{available: true, model: "other-model", query: []float32{1, 0}},
			embeddings: [][]float32{{1, 0}, {0, 1}},
			wantCalls:  0,
		},
		{
			name:       "dimension mismatch",
			backend:    &fakeBackend{available: true, model: testModel, query: []float32{1, 0, 0}},
			embeddings: [][]float32{{1, 0}, {0, 1}},
			wantCalls:  1,
		},
		{
			name:       "query embedding fails",
			backend:    &fakeBackend{available: true, model: testModel, queryErr: errors.New("boom")},
			embeddings: [][]float32{{1, 0}, {0, 1}},
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCorpus(t, []corpus.Record{diabetesRecord(), unrelatedRecord()}, tt.embeddings)
			var backend embedding.Backend
			if tt.backend != nil {
				backend = tt.backend
			}
			e := newTestEngine(t, c, backend)

			resp := e.Recommend(context.Background(), Request{Profile: endToEndProfile(), Query: "diabetes"})
			if resp.Metadata.Method != MethodKeyword {
				t.Errorf("Method = %s, want %s", resp.Metadata.Method, MethodKeyword)
			}
			for _, r := range resp.Items {
				if r.Scores.Vector != 0 {
					t.Errorf("%s vector = %v, want 0", r.ID, r.Scores.Vector)
				}
			}
			if tt.backend != nil && tt.backend.embedCalls.Load() != tt.wantCalls {
				t.Errorf("GenerateEmbedding calls = %d, want %d", tt.backend.embedCalls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestEngine_NonPositiveSimilarityReportsRawVectors(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{diabetesRecord(), unrelatedRecord()}, [][]float32{{1, 0}, {0, 1}})
	backend := &fakeBackend{available: true, model: testModel, query: []float32{-1, 0}}
	e := newTestEngine(t, c, backend)

	resp := e.Recommend(context.Background(), Request{Profile: endToEndProfile(), Query: "diabetes", MaxResults: 10})
	if resp.Metadata.Method != MethodKeyword {
		t.Errorf("Method = %s, want %s", resp.Metadata.Method, MethodKeyword)
	}
	if backend.embedCalls.Load() != 1 {
		t.Errorf("GenerateEmbedding calls = %d, want 1", backend.embedCalls.Load())
	}

	wantVector := map[string]float64{"dpp": -1, "sealants": 0}
	if len(resp.Items) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, r := range resp.Items {
		if want, ok := wantVector[r.ID]; !ok || !approxEqual(r.Scores.Vector, want) {
			t.Errorf("%s vector = %v, want %v", r.ID, r.Scores.Vector, want)
		}
		want := 0.7*r.Scores.Keyword + 0.3*r.Scores.Context
		if r.Scores.Combined != want {
			t.Errorf("%s combined = %v, want exactly %v", r.ID, r.Scores.Combined, want)
		}
	}
}

func TestZeroNonFinite(t *testing.T) {
	t.Parallel()

	scores := []float64{math.NaN(), -0.5, math.Inf(1), 0.25, math.Inf(-1)}
	zeroNonFinite(scores)

	want := []float64{0, -0.5, 0, 0.25, 0}
	if !reflect.DeepEqual(scores, want) {
		t.Errorf("zeroNonFinite() = %v, want %v", scores, want)
	}
}

func TestEngine_Fallback(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{unrelatedRecord(), diabetesRecord()}, [][]float32{{0, 1}, {1, 0}})
	backend := &fakeBackend{available: true, model: testModel, query: []float32{0, 1}}
	e := newTestEngine(t, c, backend)

	resp := e.Fallback(context.Background(), Request{Profile: endToEndProfile()})
	if resp.Metadata.Method != MethodFallback {
		t.Errorf("Method = %s, want %s", resp.Metadata.Method, MethodFallback)
	}
	if backend.embedCalls.Load() != 0 {
		t.Errorf("fallback called the backend %d times", backend.embedCalls.Load())
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "dpp" {
		t.Fatalf("items = %+v, want only dpp", resp.Items)
	}
	s := resp.Items[0].Scores
	if s.Combined != 0.7*s.Keyword+0.3*s.Context {
		t.Errorf("combined = %v, want 0.7k+0.3c", s.Combined)
	}

	recs := e.GetFallbackRecommendations(context.Background(), endToEndProfile(), 1)
	if len(recs) != 1 || recs[0].ID != "dpp" {
		t.Errorf("GetFallbackRecommendations = %+v", recs)
	}
	if stats := e.Stats(); stats.Fallbacks != 2 || stats.Requests != 2 {
		t.Errorf("Stats() = %+v, want 2 requests and 2 fallbacks", stats)
	}
}

func TestEngine_EmptyCorpus(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, corpus.EmptyCorpus(), &fakeBackend{available: true, model: testModel})

	resp := e.Recommend(context.Background(), Request{Profile: endToEndProfile()})
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", resp.Items)
	}
	if resp.Metadata.TotalCandidates != 0 {
		t.Errorf("TotalCandidates = %d, want 0", resp.Metadata.TotalCandidates)
	}
}

func TestEngine_MaxResults(t *testing.T) {
	t.Parallel()

	records := make([]corpus.Record, 60)
	for i := range records {
		records[i] = corpus.Record{
			ID:                 fmt.Sprintf("r%02d", i),
			Title:              "Generic Program",
			ImplementationCost: "low",
			EvidenceLevel:      "high",
		}
	}
	e := newTestEngine(t, newTestCorpus(t, records, nil), nil)

	tests := []struct {
		name       string
		maxResults int
		want       int
	}{
		{"default", 0, 3},
		{"negative", -4, 3},
		{"explicit", 7, 7},
		{"clamped", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs := e.GetRecommendations(context.Background(), HealthProfile{}, "", tt.maxResults)
			if len(recs) != tt.want {
				t.Fatalf("got %d items, want %d", len(recs), tt.want)
			}
			// equal scores keep corpus order
			for i, r := range recs {
				if want := fmt.Sprintf("r%02d", i); r.ID != want {
					t.Errorf("item %d = %s, want %s", i, r.ID, want)
				}
			}
		})
	}
}

func TestEngine_Deterministic(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{diabetesRecord(), unrelatedRecord()}, [][]float32{{1, 0.2}, {0.3, 1}})
	backend := &fakeBackend{available: true, model: testModel, query: []float32{0.6, 0.8}}
	e := newTestEngine(t, c, backend)

	req := Request{Profile: endToEndProfile(), Query: "blood sugar"}
	first := e.Recommend(context.Background(), req)
	second := e.Recommend(context.Background(), req)

	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Errorf("results differ between calls:\n%+v\n%+v", first.Items, second.Items)
	}
}

func TestEngine_SkipsNonFiniteCandidates(t *testing.T) {
	t.Parallel()

	c := newTestCorpus(t, []corpus.Record{diabetesRecord(), unrelatedRecord()}, [][]float32{{1, 0}, {0, 1}})
	backend := &fakeBackend{
		available: true,
		model:     testModel,
		query:     []float32{0, 1},
		scores:    []float64{math.NaN(), 0.5},
	}
	e := newTestEngine(t, c, backend)

	resp := e.Recommend(context.Background(), Request{Profile: endToEndProfile(), Query: "dental"})
	if resp.Metadata.Method != MethodHybrid {
		t.Errorf("Method = %s, want %s", resp.Metadata.Method, MethodHybrid)
	}
	if resp.Metadata.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", resp.Metadata.Skipped)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "sealants" {
		t.Errorf("items = %+v, want only sealants", resp.Items)
	}
	if e.Stats().Skipped != 1 {
		t.Errorf("Stats().Skipped = %d, want 1", e.Stats().Skipped)
	}
}

func TestEngine_RequestID(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, corpus.EmptyCorpus(), nil)

	resp := e.Recommend(context.Background(), Request{RequestID: "explicit"})
	if resp.Metadata.RequestID != "explicit" {
		t.Errorf("RequestID = %q, want explicit", resp.Metadata.RequestID)
	}

	ctx := logging.ContextWithRequestID(context.Background(), "from-context")
	resp = e.Recommend(ctx, Request{})
	if resp.Metadata.RequestID != "from-context" {
		t.Errorf("RequestID = %q, want from-context", resp.Metadata.RequestID)
	}

	resp = e.Recommend(context.Background(), Request{})
	if resp.Metadata.RequestID == "" {
		t.Error("expected a generated request ID")
	}
}
