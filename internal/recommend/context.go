// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"strings"

	"github.com/tomtom215/georisk/internal/corpus"
)

// Context score credits.
const (
	highRiskThreshold    = 7.0
	broadCategoryCredit  = 0.3
	lowCostCredit        = 0.2
	mediumCostCredit     = 0.1
	highEvidenceCredit   = 0.2
	mediumEvidenceCredit = 0.1
)

// broadCategoryWords mark interventions suited to high-risk regions.
var broadCategoryWords = []string{"comprehensive", "community", "policy"}

// ContextScore rates how well a record suits the region. It sums partial
// credits and is not capped.
func ContextScore(profile HealthProfile, r *corpus.Record) float64 {
	score := 0.0

	if profile.RiskScore() > highRiskThreshold {
		category := strings.ToLower(r.Category)
		for _, w := range broadCategoryWords {
			if strings.Contains(category, w) {
				score += broadCategoryCredit
				break
			}
		}
	}

	switch r.Cost() {
	case corpus.LevelLow:
		score += lowCostCredit
	case corpus.LevelMedium:
		score += mediumCostCredit
	}

	switch r.Evidence() {
	case corpus.LevelHigh:
		score += highEvidenceCredit
	case corpus.LevelMedium:
		score += mediumEvidenceCredit
	}

	return score
}
