package gamify

import (
	"testing"

	"algolearn/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 0},
		{50, 0},
		{99, 0},
		{100, 1},
		{250, 1},
		{283, 2}, // ceil(100*2^1.5) = 283
		{500, 2},
		{520, 3},
		{1000, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, Level(tt.xp), "xp=%d", tt.xp)
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for xp := 0; xp <= 5000; xp += 7 {
		level := Level(xp)
		require.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
		prev = level
	}
}

func TestNextLevelXP(t *testing.T) {
	assert.Equal(t, 100, NextLevelXP(0))
	assert.Equal(t, 283, NextLevelXP(1))
	assert.Equal(t, 520, NextLevelXP(2))
}

func TestAddXPZeroPoints(t *testing.T) {
	progress := &models.UserProgress{TotalXP: 150, Level: Level(150)}

	result, err := AddXP(progress, 0)
	require.NoError(t, err)

	assert.False(t, result.LevelUp)
	assert.Equal(t, 150, result.CurrentXP)
	assert.Equal(t, 283, result.NextLevelXP)
	assert.Equal(t, 1, progress.Level)
}

func TestAddXPLevelUp(t *testing.T) {
	progress := &models.UserProgress{}

	result, err := AddXP(progress, 100)
	require.NoError(t, err)

	assert.True(t, result.LevelUp)
	assert.Equal(t, 1, result.LevelsGained)
	assert.Equal(t, 1, result.NewLevel)
	assert.Equal(t, 100, progress.TotalXP)
	assert.Equal(t, 1, progress.Level)
}

func TestAddXPMultipleLevels(t *testing.T) {
	progress := &models.UserProgress{}

	result, err := AddXP(progress, 600)
	require.NoError(t, err)

	assert.True(t, result.LevelUp)
	assert.Equal(t, 3, result.LevelsGained)
	assert.Equal(t, 3, result.NewLevel)
}

func TestAddXPNegativePoints(t *testing.T) {
	progress := &models.UserProgress{TotalXP: 100, Level: 1}

	_, err := AddXP(progress, -10)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 100, progress.TotalXP, "failed credit must not mutate the ledger")
}
