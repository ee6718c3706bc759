package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CoverageMethod selects the curve used to discount students with few effective days.
type CoverageMethod string

const (
	CoverageMethodSqrt   CoverageMethod = "sqrt"
	CoverageMethodLinear CoverageMethod = "linear"
	CoverageMethodLog    CoverageMethod = "log"
	CoverageMethodNone   CoverageMethod = "none"
)

// Valid returns true when the method is supported.
func (m CoverageMethod) Valid() bool {
	switch m {
	case CoverageMethodSqrt, CoverageMethodLinear, CoverageMethodLog, CoverageMethodNone:
		return true
	default:
		return false
	}
}

// ScoringWeights holds the three user-facing weight sliders. They sum to 100.
type ScoringWeights struct {
	Quality     float64 `json:"quality" validate:"gte=0,lte=100"`
	Attendance  float64 `json:"attendance" validate:"gte=0,lte=100"`
	Punctuality float64 `json:"punctuality" validate:"gte=0,lte=100"`
}

// Sum returns the total of the three sliders.
func (w ScoringWeights) Sum() float64 {
	return w.Quality + w.Attendance + w.Punctuality
}

// DecayPolicy parameterises the late credit curve.
type DecayPolicy struct {
	Constant            float64 `json:"constant" validate:"gt=0"`
	MinimumCredit       float64 `json:"minimum_credit" validate:"gte=0,lte=1"`
	UnknownLateEstimate float64 `json:"unknown_late_estimate" validate:"gte=0,lte=1"`
}

// CoveragePolicy parameterises the coverage model.
type CoveragePolicy struct {
	Enabled       bool           `json:"enabled"`
	Method        CoverageMethod `json:"method" validate:"required,oneof=sqrt linear log none"`
	MinimumFactor float64        `json:"minimum_factor" validate:"gte=0,lte=1"`
}

// AdjustmentPolicy holds post-coverage bonuses and penalties.
type AdjustmentPolicy struct {
	PerfectAttendanceBonus   float64 `json:"perfect_attendance_bonus" validate:"gte=0"`
	StreakBonusPerWeek       float64 `json:"streak_bonus_per_week" validate:"gte=0"`
	AbsencePenaltyMultiplier float64 `json:"absence_penalty_multiplier" validate:"gte=1"`
}

// LateBracket is a display-only lateness category. Max of 0 means unbounded.
type LateBracket struct {
	Label string  `json:"label" validate:"required"`
	Min   float64 `json:"min" validate:"gte=0"`
	Max   float64 `json:"max" validate:"gte=0"`
}

// ScoringPolicy is the immutable configuration for one evaluation run.
type ScoringPolicy struct {
	Weights      ScoringWeights   `json:"weights"`
	Decay        DecayPolicy      `json:"decay"`
	Coverage     CoveragePolicy   `json:"coverage"`
	Adjustments  AdjustmentPolicy `json:"adjustments"`
	LateBrackets []LateBracket    `json:"late_brackets" validate:"dive"`
}

// ConsistencyShare is the fixed portion of the weighted score contributed by the consistency index.
// The three configurable weights are renormalised to the remaining share.
const ConsistencyShare = 0.15

// DefaultPolicy returns the policy used when none has been saved. Its weights reproduce the
// 50/25/15/10 quality/attendance/consistency/punctuality blend.
func DefaultPolicy() ScoringPolicy {
	remainder := 1 - ConsistencyShare
	return ScoringPolicy{
		Weights: ScoringWeights{
			Quality:     50 / remainder,
			Attendance:  25 / remainder,
			Punctuality: 10 / remainder,
		},
		Decay: DecayPolicy{
			Constant:            43.3,
			MinimumCredit:       0.1,
			UnknownLateEstimate: 0.5,
		},
		Coverage: CoveragePolicy{
			Enabled:       true,
			Method:        CoverageMethodSqrt,
			MinimumFactor: 0.1,
		},
		Adjustments: AdjustmentPolicy{
			AbsencePenaltyMultiplier: 1.0,
		},
		LateBrackets: DefaultLateBrackets(),
	}
}

// DefaultLateBrackets returns the stock display categories.
func DefaultLateBrackets() []LateBracket {
	return []LateBracket{
		{Label: "Minor", Min: 1, Max: 15},
		{Label: "Moderate", Min: 16, Max: 30},
		{Label: "Significant", Min: 31, Max: 60},
		{Label: "Severe", Min: 61, Max: 0},
	}
}

// Value marshals the policy to JSON for persistence.
func (p ScoringPolicy) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring policy: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON payload into the policy.
func (p *ScoringPolicy) Scan(value interface{}) error {
	if value == nil {
		*p = ScoringPolicy{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScoringPolicy", value)
	}
	if len(data) == 0 {
		*p = ScoringPolicy{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal scoring policy: %w", err)
	}
	return nil
}

// DefaultPolicyScope is the scope under which the institution-wide policy is stored.
const DefaultPolicyScope = "default"

// StoredScoringPolicy is a persisted policy row.
type StoredScoringPolicy struct {
	Scope     string        `db:"scope" json:"scope"`
	Policy    ScoringPolicy `db:"policy" json:"policy"`
	UpdatedBy *string       `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}
