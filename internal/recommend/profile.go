// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package recommend

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Indicator names as published by CDC PLACES.
const (
	IndicatorRiskScore  = "RiskScore"
	IndicatorDiabetes   = "DIABETES_CrudePrev"
	IndicatorObesity    = "OBESITY_CrudePrev"
	IndicatorInactivity = "LPA_CrudePrev"
	IndicatorSmoking    = "CSMOKING_CrudePrev"
	IndicatorBPHigh     = "BPHIGH_CrudePrev"
	IndicatorFoodInsec  = "FOODINSECU_CrudePrev"
	IndicatorAccess     = "ACCESS2_CrudePrev"
)

// HealthProfile is a region's prevalence indicators. Missing indicators read as 0.
//
// On the wire it is a flat object: "zip_code" or "region" name the region and
// every numeric field is an indicator.
//
//	{"zip_code": "10001", "RiskScore": 8.5, "DIABETES_CrudePrev": 18.2}
type HealthProfile struct {
	Region     string
	Indicators map[string]float64
}

// NewHealthProfile builds a profile from an indicator map.
func NewHealthProfile(region string, indicators map[string]float64) HealthProfile {
	copied := make(map[string]float64, len(indicators))
	for k, v := range indicators {
		copied[k] = v
	}
	return HealthProfile{Region: region, Indicators: copied}
}

// Value returns an indicator, or 0 when it is missing.
func (p HealthProfile) Value(name string) float64 {
	return p.Indicators[name]
}

// RiskScore returns the overall risk score indicator.
func (p HealthProfile) RiskScore() float64 {
	return p.Value(IndicatorRiskScore)
}

// IsEmpty reports whether the profile carries no indicators.
func (p HealthProfile) IsEmpty() bool {
	return len(p.Indicators) == 0
}

// UnmarshalJSON accepts the flat wire shape. Numbers become indicators,
// "zip_code"/"region" strings set the region, and other non-numeric fields
// are ignored. Numeric strings are accepted as indicators.
func (p *HealthProfile) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = HealthProfile{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("health profile must be a JSON object: %w", err)
	}

	out := HealthProfile{Indicators: make(map[string]float64, len(raw))}
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			continue
		}

		switch value[0] {
		case '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			if key == "zip_code" || key == "region" {
				if out.Region == "" || key == "zip_code" {
					out.Region = s
				}
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && isFinite(f) {
				out.Indicators[key] = f
			}
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			var f float64
			if err := json.Unmarshal(value, &f); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			if key == "zip_code" || key == "region" {
				out.Region = string(value)
				continue
			}
			out.Indicators[key] = f
		}
	}

	*p = out
	return nil
}

// MarshalJSON writes the flat wire shape with keys in sorted order.
func (p HealthProfile) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(p.Indicators))
	for k := range p.Indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if p.Region != "" {
		region, err := json.Marshal(p.Region)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"zip_code":`)
		buf.Write(region)
		first = false
	}
	for _, k := range keys {
		v := p.Indicators[k]
		if !isFinite(v) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		num, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(num)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
