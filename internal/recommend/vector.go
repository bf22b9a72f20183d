// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/embedding"
)

// vectorScores returns one cosine score per record, or nil when vector
// scoring does not apply: no query, no corpus embeddings, no available
// backend, or a failed query embedding.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func vectorScores(ctx context.Context, backend embedding.Backend, c *corpus.IndexedCorpus, query string, logger zerolog.Logger) []float64 {
	if strings.TrimSpace(query) == "" || !c.HasEmbeddings() {
		return nil
	}
	if backend == nil || !backend.Available(ctx) {
		return nil
	}
	if model := c.Meta().EmbeddingModel; model != "" && model != backend.Model() {
		logger.Warn().
			Str("corpus_model", model).
			Str("backend_model", backend.Model()).
			Msg("Corpus embeddings come from another model, skipping vector scores")
		return nil
	}

	q, err := backend.GenerateEmbedding(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("Query embedding failed, using keyword scores")
		return nil
	}
	if len(q) == 0 {
		return nil
	}
	if len(q) != c.Dimensions() {
		logger.Warn().
			Int("query_dims", len(q)).
			Int("corpus_dims", c.Dimensions()).
			Msg("Query embedding width differs from corpus, skipping vector scores")
		return nil
	}

	scores := backend.ComputeSimilarity(q, c.Embeddings())
	if len(scores) != c.Len() {
		return nil
	}
	return scores
}

// maxScore returns the largest non-NaN value in scores, or 0 when there is none.
func maxScore(scores []float64) float64 {
	best, found := 0.0, false
	for _, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if !found || s > best {
			best, found = s, true
		}
	}
	return best
}

// zeroNonFinite replaces NaN and infinite scores with 0 in place.
func zeroNonFinite(scores []float64) {
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			scores[i] = 0
		}
	}
}
