package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

func TestCompareOrdersByScoreMovement(t *testing.T) {
	baseline := []models.StudentScorecard{
		{Rank: 1, StudentID: "a", FinalWeightedScore: 90},
		{Rank: 2, StudentID: "b", FinalWeightedScore: 80},
		{Rank: 3, StudentID: "c", FinalWeightedScore: 70},
	}
	candidate := []models.StudentScorecard{
		{Rank: 1, StudentID: "b", FinalWeightedScore: 92},
		{Rank: 2, StudentID: "a", FinalWeightedScore: 89},
		{Rank: 3, StudentID: "c", FinalWeightedScore: 70},
	}

	diffs := compare(baseline, candidate)
	require.Len(t, diffs, 3)
	assert.Equal(t, "b", diffs[0].StudentID)
	assert.Equal(t, 12.0, diffs[0].scoreDelta())
	assert.Equal(t, 1, diffs[0].rankDelta())
	assert.Equal(t, "a", diffs[1].StudentID)
	assert.Equal(t, -1, diffs[1].rankDelta())
	assert.Equal(t, 0.0, diffs[2].scoreDelta())
}

func TestLoadPolicy(t *testing.T) {
	policy, err := loadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPolicy().Weights, policy.Weights)

	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"weights":{"quality":40,"attendance":40,"punctuality":20}}`), 0o600))
	policy, err = loadPolicy(valid)
	require.NoError(t, err)
	assert.Equal(t, 40.0, policy.Weights.Quality)
	assert.Equal(t, models.DefaultPolicy().Decay, policy.Decay)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"weights":{"quality":40,"attendance":40,"punctuality":10}}`), 0o600))
	_, err = loadPolicy(invalid)
	assert.Error(t, err)
}
