package scoring

import (
	"math"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// AggregateStudent computes the scorecard for one student. records must belong to that
// student and come from Prepare; totalSessions is the number of held session dates in the
// whole snapshot and acts as the coverage denominator. Rank is left for the caller.
func AggregateStudent(records []ClassifiedRecord, totalSessions int, policy models.ScoringPolicy) models.StudentScorecard {
	card := models.StudentScorecard{}
	if len(records) > 0 {
		card.StudentID = records[0].StudentID
		card.StudentName = records[0].DisplayName()
	}

	dates := make(map[string]struct{}, len(records))
	var (
		present, late, absent, excused int
		lateCredits                    float64
		pattern                        = make([]bool, 0, len(records))
		cumulative                     = make([]float64, 0, len(records))
		runningPresent, runningTotal   int
		breakdown                      = make(map[string]int)
	)

	for _, record := range records {
		dates[record.DateKey] = struct{}{}
		switch record.Effective {
		case models.AttendanceStatusOnTime:
			present++
		case models.AttendanceStatusLate:
			late++
			lateCredits += LateCredit(record.LateMinutes, policy.Decay)
			if label := lateLabel(record.LateMinutes, policy.LateBrackets); label != "" {
				breakdown[label]++
			}
		case models.AttendanceStatusExcused:
			excused++
			continue
		default:
			absent++
		}

		attended := record.Effective.Attended()
		pattern = append(pattern, attended)
		runningTotal++
		if attended {
			runningPresent++
		}
		cumulative = append(cumulative, percent(float64(runningPresent), float64(runningTotal)))
	}

	effectiveDays := len(dates) - excused
	if effectiveDays < 0 {
		effectiveDays = 0
	}
	totalPresent := present + late
	unexcusedAbsent := effectiveDays - totalPresent
	if unexcusedAbsent < 0 {
		unexcusedAbsent = 0
	}

	attendanceRate := percent(float64(totalPresent), float64(effectiveDays))
	qualityRate := percent(float64(present)+lateCredits, float64(effectiveDays))
	punctualityRate := percent(float64(present), float64(totalPresent))
	consistency := ConsistencyIndex(pattern)
	consistencyPct := consistency * 100

	raw := weightedScore(policy.Weights, qualityRate, attendanceRate, punctualityRate, consistencyPct)
	coverage := CoverageFactor(effectiveDays, totalSessions, policy.Coverage)
	final := raw * math.Min(coverage, 1)

	adjust := policy.Adjustments
	if attendanceRate >= 100 {
		final += adjust.PerfectAttendanceBonus
	}
	if unexcusedAbsent > 0 && effectiveDays > 0 {
		final -= percent(float64(unexcusedAbsent), float64(effectiveDays)) * (adjust.AbsencePenaltyMultiplier - 1)
	}
	final += math.Floor(float64(totalPresent)/5) * adjust.StreakBonusPerWeek
	final = clamp(final, 0, 100)

	card.Present = present
	card.Late = late
	card.UnexcusedAbsent = unexcusedAbsent
	card.Excused = excused
	card.EffectiveDays = effectiveDays
	card.AttendanceRate = round2(attendanceRate)
	card.QualityAdjustedRate = round2(qualityRate)
	card.PunctualityRate = round2(punctualityRate)
	card.ConsistencyIndex = consistency
	card.ConsistencyPercentage = round2(consistencyPct)
	card.CoverageFactor = round2(coverage)
	card.RawWeightedScore = round2(raw)
	card.FinalWeightedScore = round2(final)
	card.Trend = AnalyzeTrend(cumulative)
	card.WeeklyChange = weeklyChange(cumulative)
	card.MinRate, card.AvgRate, card.MaxRate = rateSpread(cumulative)
	if len(breakdown) > 0 {
		card.LateBreakdown = breakdown
	}
	return card
}

// weightedScore blends the four factors. Consistency always contributes ConsistencyShare;
// the three configurable weights are renormalised over the remaining share.
func weightedScore(weights models.ScoringWeights, quality, attendance, punctuality, consistency float64) float64 {
	var configurable float64
	if sum := weights.Sum(); sum > 0 {
		configurable = (weights.Quality*quality + weights.Attendance*attendance + weights.Punctuality*punctuality) / sum
	}
	return models.ConsistencyShare*consistency + (1-models.ConsistencyShare)*configurable
}

func lateLabel(minutes *float64, brackets []models.LateBracket) string {
	if minutes == nil {
		return UnknownBracketLabel
	}
	return LateBracketFor(*minutes, brackets)
}

func weeklyChange(cumulative []float64) float64 {
	n := len(cumulative)
	if n < 3 {
		return 0
	}
	return round2(cumulative[n-1] - cumulative[n-2])
}

func rateSpread(cumulative []float64) (minRate, avgRate, maxRate float64) {
	if len(cumulative) == 0 {
		return 0, 0, 0
	}
	minRate, maxRate = cumulative[0], cumulative[0]
	var total float64
	for _, rate := range cumulative {
		total += rate
		minRate = math.Min(minRate, rate)
		maxRate = math.Max(maxRate, rate)
	}
	return round2(minRate), round2(total / float64(len(cumulative))), round2(maxRate)
}
