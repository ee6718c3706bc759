package scoring

import "math"

// fullWeightAbsences is the absence count at which the regularity signal applies in full.
const fullWeightAbsences = 5.0

// ConsistencyIndex scores how regular a presence pattern is, independent of the raw rate.
// pattern holds one entry per accountable date in order, true meaning present. Scattered
// single absences score high; one contiguous block of absences scores low.
func ConsistencyIndex(pattern []bool) float64 {
	switch len(pattern) {
	case 0:
		return 0
	case 1:
		if pattern[0] {
			return 1
		}
		return 0
	}

	totalAbsent := 0
	streaks := make([]int, 0)
	run := 0
	for _, present := range pattern {
		if !present {
			totalAbsent++
			run++
			continue
		}
		if run > 0 {
			streaks = append(streaks, run)
			run = 0
		}
	}
	if run > 0 {
		streaks = append(streaks, run)
	}

	if totalAbsent == 0 {
		return 1
	}
	if totalAbsent == len(pattern) {
		return 0
	}

	longest := 0
	for _, streak := range streaks {
		if streak > longest {
			longest = streak
		}
	}

	absent := float64(totalAbsent)
	normalizedScatter := 1.0
	streakPenalty := 1.0
	if totalAbsent > 1 {
		scatterRatio := float64(len(streaks)) / absent
		normalizedScatter = (scatterRatio - 1/absent) / (1 - 1/absent)
		streakPenalty = 1 - float64(longest-1)/(absent-1)
	}
	raw := 0.5*normalizedScatter + 0.5*streakPenalty

	dampening := math.Min(absent/fullWeightAbsences, 1)
	consistency := raw*dampening + (1 - dampening)

	return round2(clamp(consistency, 0, 1))
}
