// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package embedding

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by Init when the backend is disabled or failed
// to initialize. The state is sticky for the life of the process.
var ErrUnavailable = errors.New("embedding backend unavailable")

// ValidationError reports unusable input to an available backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("embedding: invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
