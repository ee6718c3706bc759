package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

func TestCoverageFactorMethods(t *testing.T) {
	base := models.CoveragePolicy{Enabled: true, MinimumFactor: 0}
	cases := []struct {
		method   models.CoverageMethod
		eff      int
		total    int
		expected float64
	}{
		{models.CoverageMethodSqrt, 8, 27, math.Sqrt(8.0 / 27.0)},
		{models.CoverageMethodSqrt, 2, 27, 0.27},
		{models.CoverageMethodLinear, 9, 27, 1.0 / 3.0},
		{models.CoverageMethodLog, 27, 27, 1.0},
		{models.CoverageMethodLog, 0, 27, 0},
		{models.CoverageMethodNone, 1, 27, 1.0},
	}
	for _, tc := range cases {
		policy := base
		policy.Method = tc.method
		assert.InDelta(t, tc.expected, CoverageFactor(tc.eff, tc.total, policy), 0.005, "%s %d/%d", tc.method, tc.eff, tc.total)
	}
}

func TestCoverageFactorLogIsHarsherThanSqrtAtLowCoverage(t *testing.T) {
	sqrt := CoverageFactor(2, 27, models.CoveragePolicy{Enabled: true, Method: models.CoverageMethodSqrt})
	log := CoverageFactor(2, 27, models.CoveragePolicy{Enabled: true, Method: models.CoverageMethodLog})
	assert.Less(t, log, sqrt)
}

func TestCoverageFactorBounds(t *testing.T) {
	for _, method := range []models.CoverageMethod{models.CoverageMethodSqrt, models.CoverageMethodLinear, models.CoverageMethodLog, models.CoverageMethodNone} {
		policy := models.CoveragePolicy{Enabled: true, Method: method, MinimumFactor: 0.25}
		for total := 1; total <= 30; total++ {
			for eff := 0; eff <= total; eff++ {
				factor := CoverageFactor(eff, total, policy)
				assert.GreaterOrEqual(t, factor, 0.25)
				assert.LessOrEqual(t, factor, 1.0)
			}
			assert.Equal(t, 1.0, CoverageFactor(total, total, policy))
		}
	}
}

func TestCoverageFactorDisabledOrEmpty(t *testing.T) {
	disabled := models.CoveragePolicy{Enabled: false, Method: models.CoverageMethodLinear, MinimumFactor: 0}
	assert.Equal(t, 1.0, CoverageFactor(1, 27, disabled))

	enabled := models.CoveragePolicy{Enabled: true, Method: models.CoverageMethodLinear}
	assert.Equal(t, 1.0, CoverageFactor(0, 0, enabled))
	assert.Equal(t, 1.0, CoverageFactor(40, 27, enabled))
}
