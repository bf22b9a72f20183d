// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"errors"
	"fmt"
)

// TransportError means the corpus source could not be read: network failure,
// timeout, non-2xx status, open circuit, or an unreadable file.
type TransportError struct {
	Source     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("corpus fetch from %s: status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("corpus fetch from %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DataShapeError means the payload was read but is not a non-empty list of
// well-formed intervention records. The whole batch is rejected.
type DataShapeError struct {
	Reason string
	Index  int // offending record index, -1 when the payload as a whole is wrong
	Err    error
}

func (e *DataShapeError) Error() string {
	msg := "corpus payload: " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("corpus payload: record %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataShapeError) Unwrap() error { return e.Err }

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsDataShape reports whether err is or wraps a *DataShapeError.
func IsDataShape(err error) bool {
	var de *DataShapeError
	return errors.As(err, &de)
}

// ErrEmbeddingMismatch is returned by NewIndexedCorpus when the embedding
// matrix does not line up with the records.
var ErrEmbeddingMismatch = errors.New("embedding matrix does not match records")
