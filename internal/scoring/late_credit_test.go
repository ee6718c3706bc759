package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

func TestLateCreditDecayCurve(t *testing.T) {
	decay := models.DefaultPolicy().Decay
	cases := []struct {
		name     string
		minutes  *float64
		expected float64
	}{
		{name: "unknown minutes", minutes: nil, expected: 0.5},
		{name: "zero", minutes: floatPtr(0), expected: 1.0},
		{name: "negative", minutes: floatPtr(-5), expected: 1.0},
		{name: "thirty minutes", minutes: floatPtr(30), expected: 0.50},
		{name: "one hour", minutes: floatPtr(60), expected: 0.25},
		{name: "ninety minutes", minutes: floatPtr(90), expected: 0.125},
		{name: "floor", minutes: floatPtr(1000), expected: decay.MinimumCredit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, LateCredit(tc.minutes, decay), 0.01)
		})
	}
}

func TestLateCreditMonotonicAndFloored(t *testing.T) {
	decay := models.DecayPolicy{Constant: 43.3, MinimumCredit: 0.2, UnknownLateEstimate: 0.4}
	prev := LateCredit(floatPtr(0), decay)
	for m := 1.0; m <= 600; m += 7.5 {
		credit := LateCredit(floatPtr(m), decay)
		assert.LessOrEqual(t, credit, prev, "credit increased at %v minutes", m)
		assert.GreaterOrEqual(t, credit, decay.MinimumCredit)
		assert.LessOrEqual(t, credit, 1.0)
		prev = credit
	}
}

func TestLateBracketFor(t *testing.T) {
	brackets := models.DefaultLateBrackets()
	assert.Equal(t, "Minor", LateBracketFor(5, brackets))
	assert.Equal(t, "Moderate", LateBracketFor(30, brackets))
	assert.Equal(t, "Significant", LateBracketFor(31, brackets))
	assert.Equal(t, "Severe", LateBracketFor(240, brackets))
	assert.Equal(t, "", LateBracketFor(0, brackets))
	assert.Equal(t, "", LateBracketFor(15.5, brackets))
}
