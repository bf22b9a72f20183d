// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"math"

	"github.com/tomtom215/georisk/internal/corpus"
	"github.com/tomtom215/georisk/internal/textmatch"
)

// Keyword score credits.
const (
	issueCredit       = 0.4
	keywordCredit     = 0.2
	titleCredit       = 0.3
	descriptionCredit = 0.1
	keywordScoreCap   = 1.0

	// queryTokenMinLen drops short query words ("the", "and").
	queryTokenMinLen = 3
)

// keywordScorer scores records against a fixed keyword list.
type keywordScorer struct {
	keywords  []string
	set       map[string]struct{}
	automaton *textmatch.Automaton
}

// newKeywordScorer combines the profile's risk keywords with query tokens
// longer than three characters. The list keeps repeats: a query word that is
// also a risk keyword earns title and description credit once per entry.
func newKeywordScorer(profile HealthProfile, query string) *keywordScorer {
	candidates := RiskKeywords(profile)
	candidates = append(candidates, textmatch.Tokenize(query, queryTokenMinLen)...)

	s := &keywordScorer{set: make(map[string]struct{}, len(candidates))}
	for _, kw := range candidates {
		kw = textmatch.Normalize(kw)
		if kw == "" {
			continue
		}
		s.set[kw] = struct{}{}
		s.keywords = append(s.keywords, kw)
	}
	s.automaton = textmatch.New(s.keywords)
	return s
}

// Keywords returns the keyword list in scoring order.
func (s *keywordScorer) Keywords() []string {
	return s.keywords
}

// Score returns the record's keyword score in [0, 1].
func (s *keywordScorer) Score(r *corpus.Record) float64 {
	if len(s.keywords) == 0 {
		return 0
	}

	score := 0.0
	for _, issue := range r.HealthIssues {
		if s.automaton.Contains(issue) {
			score += issueCredit
		}
	}
	for _, kw := range r.Keywords {
		if _, ok := s.set[textmatch.Normalize(kw)]; ok {
			score += keywordCredit
		}
	}
	score += titleCredit * float64(s.automaton.CountPresent(r.Title))
	score += descriptionCredit * float64(s.automaton.CountPresent(r.Description))

	return math.Min(score, keywordScoreCap)
}
