package scoring

import "github.com/noah-isme/sma-attendance-scoring/internal/models"

const (
	// TrendWindow is the number of most recent cumulative samples fitted.
	TrendWindow = 6

	volatileRSquared = 0.3
	slopeThreshold   = 2.0
)

// AnalyzeTrend fits an ordinary least-squares line to the most recent cumulative rates
// (most recent last) and classifies the direction.
func AnalyzeTrend(cumulativeRates []float64) models.TrendResult {
	if len(cumulativeRates) > TrendWindow {
		cumulativeRates = cumulativeRates[len(cumulativeRates)-TrendWindow:]
	}
	n := len(cumulativeRates)
	if n < 2 {
		return models.TrendResult{Slope: 0, RSquared: 1, Classification: models.TrendStable}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range cumulativeRates {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	count := float64(n)
	slope := (count*sumXY - sumX*sumY) / (count*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / count
	mean := sumY / count

	var ssRes, ssTot float64
	for i, y := range cumulativeRates {
		fitted := intercept + slope*float64(i+1)
		ssRes += (y - fitted) * (y - fitted)
		ssTot += (y - mean) * (y - mean)
	}
	rSquared := 1.0
	if ssTot > epsilon {
		rSquared = 1 - ssRes/ssTot
	}

	return models.TrendResult{
		Slope:          round2(slope),
		RSquared:       round2(rSquared),
		Classification: classifyTrend(slope, rSquared),
	}
}

func classifyTrend(slope, rSquared float64) models.TrendClassification {
	switch {
	case rSquared < volatileRSquared:
		return models.TrendVolatile
	case slope > slopeThreshold:
		return models.TrendImproving
	case slope < -slopeThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
