package scoring

import (
	"fmt"
	"math"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
)

// WeightTolerance is the allowed deviation of the weight sum from 100.
const WeightTolerance = 0.01

// ValidatePolicy checks the numeric ranges of a policy. The engine never calls it; callers
// reject invalid policies before evaluation.
func ValidatePolicy(policy models.ScoringPolicy) error {
	w := policy.Weights
	sliders := []struct {
		name  string
		value float64
	}{{"quality", w.Quality}, {"attendance", w.Attendance}, {"punctuality", w.Punctuality}}
	for _, slider := range sliders {
		if slider.value < 0 || slider.value > 100 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("%s weight must be between 0 and 100", slider.name))
		}
	}
	if math.Abs(w.Sum()-100) > WeightTolerance {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weights must sum to 100, got %.2f", w.Sum()))
	}

	d := policy.Decay
	if d.Constant <= 0 {
		return invalidPolicy("decay constant must be positive")
	}
	if d.MinimumCredit < 0 || d.MinimumCredit > 1 {
		return invalidPolicy("minimum credit must be between 0 and 1")
	}
	if d.UnknownLateEstimate < 0 || d.UnknownLateEstimate > 1 {
		return invalidPolicy("unknown late estimate must be between 0 and 1")
	}

	c := policy.Coverage
	if !c.Method.Valid() {
		return invalidPolicy(fmt.Sprintf("unsupported coverage method %q", c.Method))
	}
	if c.MinimumFactor < 0 || c.MinimumFactor > 1 {
		return invalidPolicy("minimum coverage factor must be between 0 and 1")
	}

	a := policy.Adjustments
	if a.PerfectAttendanceBonus < 0 || a.StreakBonusPerWeek < 0 {
		return invalidPolicy("bonuses must not be negative")
	}
	if a.AbsencePenaltyMultiplier < 1 {
		return invalidPolicy("absence penalty multiplier must be at least 1")
	}

	return ValidateBrackets(policy.LateBrackets)
}

// ValidateBrackets checks that late brackets are labelled, ordered and non-overlapping.
// Only the last bracket may be unbounded.
func ValidateBrackets(brackets []models.LateBracket) error {
	for i, bracket := range brackets {
		if bracket.Label == "" {
			return invalidPolicy(fmt.Sprintf("late bracket %d requires a label", i+1))
		}
		if bracket.Min < 0 || bracket.Max < 0 {
			return invalidPolicy(fmt.Sprintf("late bracket %q has negative bounds", bracket.Label))
		}
		if bracket.Max != 0 && bracket.Max < bracket.Min {
			return invalidPolicy(fmt.Sprintf("late bracket %q max is below min", bracket.Label))
		}
		if i == 0 {
			continue
		}
		prev := brackets[i-1]
		if prev.Max == 0 {
			return invalidPolicy(fmt.Sprintf("late bracket %q follows an unbounded bracket", bracket.Label))
		}
		if bracket.Min <= prev.Max {
			return invalidPolicy(fmt.Sprintf("late bracket %q overlaps %q", bracket.Label, prev.Label))
		}
	}
	return nil
}

func invalidPolicy(message string) error {
	return appErrors.Clone(appErrors.ErrInvalidPolicy, message)
}
