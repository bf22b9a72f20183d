// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"fmt"
	"time"
)

// Meta describes where an IndexedCorpus came from.
type Meta struct {
	Version        uint64
	FetchedAt      time.Time
	Source         string
	EmbeddingModel string
}

// IndexedCorpus pairs the ordered records with an aligned embedding matrix.
// Row i of the matrix belongs to record i. A nil matrix means the corpus has
// no embeddings. Values are never mutated after construction; a refresh
// builds a new one.
type IndexedCorpus struct {
	records    []Record
	embeddings [][]float32
	meta       Meta
}

// NewIndexedCorpus copies records and embeddings into a new corpus.
// embeddings may be nil. Otherwise it must have one non-empty row per record
// and every row must have the same width, or ErrEmbeddingMismatch is returned.
func NewIndexedCorpus(records []Record, embeddings [][]float32, meta Meta) (*IndexedCorpus, error) {
	recs := make([]Record, len(records))
	copy(recs, records)

	if embeddings == nil {
		meta.EmbeddingModel = ""
		return &IndexedCorpus{records: recs, meta: meta}, nil
	}

	if len(embeddings) != len(records) {
		return nil, fmt.Errorf("%w: %d rows for %d records", ErrEmbeddingMismatch, len(embeddings), len(records))
	}

	matrix := make([][]float32, len(embeddings))
	width := -1
	for i, row := range embeddings {
		if len(row) == 0 {
			return nil, fmt.Errorf("%w: row %d is empty", ErrEmbeddingMismatch, i)
		}
		if width >= 0 && len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d dimensions, want %d", ErrEmbeddingMismatch, i, len(row), width)
		}
		width = len(row)
		matrix[i] = append([]float32(nil), row...)
	}

	return &IndexedCorpus{records: recs, embeddings: matrix, meta: meta}, nil
}

// EmptyCorpus returns a corpus with no records and no embeddings.
func EmptyCorpus() *IndexedCorpus {
	return &IndexedCorpus{}
}

// Len returns the number of records.
func (c *IndexedCorpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns the records in corpus order. Callers must not modify them.
func (c *IndexedCorpus) Records() []Record {
	if c == nil {
		return nil
	}
	return c.records
}

// Record returns a pointer to record i.
func (c *IndexedCorpus) Record(i int) *Record {
	return &c.records[i]
}

// HasEmbeddings reports whether the corpus carries an embedding matrix.
func (c *IndexedCorpus) HasEmbeddings() bool {
	return c != nil && len(c.records) > 0 && c.embeddings != nil
}

// Embeddings returns the matrix, or nil. Callers must not modify it.
func (c *IndexedCorpus) Embeddings() [][]float32 {
	if c == nil {
		return nil
	}
	return c.embeddings
}

// Dimensions returns the embedding width, or 0 without embeddings.
func (c *IndexedCorpus) Dimensions() int {
	if !c.HasEmbeddings() {
		return 0
	}
	return len(c.embeddings[0])
}

// Meta returns the corpus metadata.
func (c *IndexedCorpus) Meta() Meta {
	if c == nil {
		return Meta{}
	}
	return c.meta
}

// Version returns the corpus version. Zero means nothing was ever loaded.
func (c *IndexedCorpus) Version() uint64 {
	return c.Meta().Version
}
