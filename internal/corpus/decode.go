// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"bytes"

	"github.com/goccy/go-json"
)

// wrappedPayload is the published shape: {"interventions": [...]}.
type wrappedPayload struct {
	Interventions *[]json.RawMessage `json:"interventions"`
}

// DecodePayload parses either {"interventions": [...]} or a bare list.
// Any malformed record rejects the whole payload with a *DataShapeError.
func DecodePayload(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &DataShapeError{Reason: "empty payload", Index: -1}
	}

	var items []json.RawMessage
	switch data[0] {
	case '{':
		var wrapped wrappedPayload
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, &DataShapeError{Reason: "invalid JSON object", Index: -1, Err: err}
		}
		if wrapped.Interventions == nil {
			return nil, &DataShapeError{Reason: `object has no "interventions" list`, Index: -1}
		}
		items = *wrapped.Interventions
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &DataShapeError{Reason: "invalid JSON list", Index: -1, Err: err}
		}
	default:
		return nil, &DataShapeError{Reason: "payload is neither an object nor a list", Index: -1}
	}

	if len(items) == 0 {
		return nil, &DataShapeError{Reason: "no intervention records", Index: -1}
	}

	records := make([]Record, len(items))
	for i, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, &DataShapeError{Reason: "record is not an object", Index: i}
		}
		if err := json.Unmarshal(raw, &records[i]); err != nil {
			return nil, &DataShapeError{Reason: "malformed record", Index: i, Err: err}
		}
		if err := records[i].Validate(); err != nil {
			return nil, &DataShapeError{Reason: "invalid record", Index: i, Err: err}
		}
	}

	return records, nil
}
