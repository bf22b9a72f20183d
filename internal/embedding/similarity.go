// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package embedding

import (
	"math"
	"sort"
)

// Match is one row of a similarity search.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors, and zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CosineAll scores query against every row of matrix.
func CosineAll(query []float32, matrix [][]float32) []float64 {
	if len(query) == 0 || len(matrix) == 0 {
		return nil
	}
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		scores[i] = Cosine(query, row)
	}
	return scores
}

// TopK returns the k best rows of scores, highest first. Equal scores keep
// row order.
func TopK(scores []float64, k int) []Match {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	matches := make([]Match, len(scores))
	for i, s := range scores {
		matches[i] = Match{Index: i, Score: s}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// normalize scales v to unit length in place. A zero vector is left alone.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
