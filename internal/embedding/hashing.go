// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tomtom215/georisk/internal/textmatch"
)

// HashingEncoder is a deterministic in-process encoder. Each unigram and
// adjacent bigram of the normalized text is hashed into one of dims buckets
// with a hash-derived sign, and the result is scaled to unit length. Texts
// that share vocabulary get a positive cosine; unrelated texts land near 0.
type HashingEncoder struct {
	dims int
}

var _ Encoder = (*HashingEncoder)(nil)

// NewHashingEncoder creates an encoder producing dims-wide vectors.
func NewHashingEncoder(dims int) *HashingEncoder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEncoder{dims: dims}
}

// Model implements Encoder.
func (e *HashingEncoder) Model() string { return DefaultHashingModel }

// Provider implements Encoder.
func (e *HashingEncoder) Provider() string { return ProviderHashing }

// Dimensions returns the vector width.
func (e *HashingEncoder) Dimensions() int { return e.dims }

// Embed implements Encoder. It never fails except on a cancelled context.
func (e *HashingEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	rows := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows[i] = e.encode(text)
	}
	return rows, nil
}

func (e *HashingEncoder) encode(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := hashTokens(text)
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	normalize(vec)
	return vec
}

func (e *HashingEncoder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// hashTokens splits compatibility-normalized, lower-cased text on anything
// that is not a letter or digit. Underscores split too, so "blood_sugar"
// and "blood sugar" produce the same features.
func hashTokens(text string) []string {
	text = textmatch.Normalize(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			out = append(out, f)
		}
	}
	return out
}
