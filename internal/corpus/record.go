// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package corpus

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/georisk/internal/validation"
)

// Cost and evidence levels. Missing values read as LevelMedium.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Record is one public-health intervention. Records are immutable once fetched.
type Record struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title" validate:"required"`
	Category           string     `json:"category"`
	HealthIssues       StringSet  `json:"health_issues"`
	TargetPopulation   string     `json:"target_population"`
	Setting            string     `json:"setting"`
	Description        string     `json:"description"`
	Activities         StringList `json:"activities"`
	Outcomes           string     `json:"outcomes,omitempty"`
	ImplementationCost string     `json:"implementation_cost" validate:"level"`
	Timeframe          string     `json:"timeframe"`
	EvidenceLevel      string     `json:"evidence_level" validate:"level"`
	Keywords           StringSet  `json:"keywords"`
	Source             string     `json:"source"`
}

// Cost returns the lower-cased implementation cost, defaulting to medium.
func (r *Record) Cost() string {
	return levelOrMedium(r.ImplementationCost)
}

// Evidence returns the lower-cased evidence level, defaulting to medium.
func (r *Record) Evidence() string {
	return levelOrMedium(r.EvidenceLevel)
}

func levelOrMedium(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return LevelMedium
	}
	return v
}

// Validate checks the record is well formed.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if err := validation.ValidateStruct(r); err != nil {
		return err
	}
	return nil
}

// EmbeddingText is the text embedded for semantic search: the descriptive
// fields joined with " | ", empty parts omitted.
func (r *Record) EmbeddingText() string {
	parts := make([]string, 0, 7)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	labeled := func(label, s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, label+": "+s)
		}
	}

	add(r.Title)
	add(r.Description)
	labeled("Category", r.Category)
	labeled("Health issues", strings.Join(r.HealthIssues, ", "))
	labeled("Target", r.TargetPopulation)
	labeled("Setting", r.Setting)
	labeled("Keywords", strings.Join(r.Keywords, ", "))

	return strings.Join(parts, " | ")
}

// StringList is an ordered list of strings that also accepts a bare string
// on input. Entries are trimmed and blanks dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	values, err := decodeStrings(data)
	if err != nil {
		return err
	}
	*l = values
	return nil
}

// StringSet is like StringList but drops duplicates, keeping first occurrences.
type StringSet []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	values, err := decodeStrings(data)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	*s = out
	return nil
}

func decodeStrings(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var raw []string
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		raw = []string{single}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expected a string or list of strings: %w", err)
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
