package scoring

import (
	"math"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// UnknownBracketLabel groups late records whose minutes were not captured.
const UnknownBracketLabel = "Unknown"

// LateCredit maps lateness to a credit weight in [MinimumCredit, 1] using exponential decay.
// A nil duration means the record was marked late without minutes and falls back to the
// policy estimate.
func LateCredit(lateMinutes *float64, decay models.DecayPolicy) float64 {
	if lateMinutes == nil {
		return decay.UnknownLateEstimate
	}
	minutes := *lateMinutes
	if minutes <= 0 {
		return 1.0
	}
	if decay.Constant <= 0 {
		return decay.MinimumCredit
	}
	credit := math.Exp(-minutes / decay.Constant)
	return math.Max(decay.MinimumCredit, credit)
}

// LateBracketFor returns the display label for the given minutes, or "" when no bracket matches.
// Brackets never influence scoring.
func LateBracketFor(minutes float64, brackets []models.LateBracket) string {
	for _, bracket := range brackets {
		if minutes < bracket.Min {
			continue
		}
		if bracket.Max == 0 || minutes <= bracket.Max {
			return bracket.Label
		}
	}
	return ""
}
