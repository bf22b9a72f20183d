// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import "strings"

// DefaultQuery is used for vector scoring when no indicator is triggered.
const DefaultQuery = "diabetes prevention community health chronic disease management"

// IndicatorRule maps a prevalence indicator above Threshold to keywords and
// a phrase for the derived query. The comparison is strict.
type IndicatorRule struct {
	Indicator string
	Threshold float64
	Keywords  []string
	Phrase    string
}

// IndicatorRules is evaluated in order; the derived query follows this order.
var IndicatorRules = []IndicatorRule{
	{
		Indicator: IndicatorDiabetes,
		Threshold: 15,
		Keywords:  []string{"diabetes", "blood_sugar", "glucose"},
		Phrase:    "diabetes prevention blood sugar management",
	},
	{
		Indicator: IndicatorObesity,
		Threshold: 25,
		Keywords:  []string{"obesity", "weight", "bmi"},
		Phrase:    "obesity weight management",
	},
	{
		Indicator: IndicatorInactivity,
		Threshold: 20,
		Keywords:  []string{"physical", "activity", "exercise", "walking"},
		Phrase:    "physical activity exercise promotion",
	},
	{
		Indicator: IndicatorSmoking,
		Threshold: 15,
		Keywords:  []string{"smoking", "tobacco", "cessation"},
		Phrase:    "smoking cessation tobacco control",
	},
	{
		Indicator: IndicatorBPHigh,
		Threshold: 30,
		Keywords:  []string{"blood_pressure", "hypertension"},
		Phrase:    "blood pressure hypertension control",
	},
	{
		Indicator: IndicatorFoodInsec,
		Threshold: 10,
		Keywords:  []string{"food", "nutrition", "food_security"},
		Phrase:    "food security nutrition access",
	},
	{
		Indicator: IndicatorAccess,
		Threshold: 15,
		Keywords:  []string{"healthcare", "access", "mobile"},
		Phrase:    "healthcare access mobile health services",
	},
}

// Triggered returns the rules whose indicator exceeds its threshold.
func Triggered(p HealthProfile) []IndicatorRule {
	var out []IndicatorRule
	for _, r := range IndicatorRules {
		if p.Value(r.Indicator) > r.Threshold {
			out = append(out, r)
		}
	}
	return out
}

// RiskKeywords returns the keywords of every triggered rule, in rule order.
func RiskKeywords(p HealthProfile) []string {
	var out []string
	for _, r := range Triggered(p) {
		out = append(out, r.Keywords...)
	}
	return out
}

// DeriveQuery builds a search query from the triggered rules' phrases,
// or DefaultQuery when none trigger.
func DeriveQuery(p HealthProfile) string {
	rules := Triggered(p)
	if len(rules) == 0 {
		return DefaultQuery
	}
	phrases := make([]string, len(rules))
	for i, r := range rules {
		phrases[i] = r.Phrase
	}
	return strings.Join(phrases, " ")
}
