package scoring

import (
	"math"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// CoverageFactor discounts students whose effective days cover only a small part of the term.
// The result lies in [MinimumFactor, 1].
func CoverageFactor(effectiveDays, totalSessions int, coverage models.CoveragePolicy) float64 {
	if !coverage.Enabled || totalSessions <= 0 {
		return 1.0
	}
	ratio := clamp(float64(effectiveDays)/float64(totalSessions), 0, 1)
	if ratio >= 1 {
		return 1.0
	}

	var factor float64
	switch coverage.Method {
	case models.CoverageMethodSqrt:
		factor = math.Sqrt(ratio)
	case models.CoverageMethodLinear:
		factor = ratio
	case models.CoverageMethodLog:
		// ln(1 + r(e-1)) maps 0 -> 0 and 1 -> 1.
		factor = math.Log(1 + ratio*(math.E-1))
	default:
		factor = 1.0
	}
	return math.Min(1.0, math.Max(coverage.MinimumFactor, factor))
}
