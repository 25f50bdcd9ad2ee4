package gamify

import (
	"testing"
	"time"

	"algolearn/models"

	"github.com/stretchr/testify/assert"
)

func TestUpdateStreakSameDay(t *testing.T) {
	lastActive := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	progress := &models.UserProgress{StreakDays: 3, LastActive: lastActive}

	streak := UpdateStreak(progress, lastActive)
	assert.Equal(t, 3, streak)
	assert.Equal(t, lastActive, progress.LastActive, "same-day activity must not move last active")

	// 23h50m later still lands in the same 24h window
	streak = UpdateStreak(progress, lastActive.Add(23*time.Hour+50*time.Minute))
	assert.Equal(t, 3, streak)
	assert.Equal(t, lastActive, progress.LastActive)
}

func TestUpdateStreakNextDay(t *testing.T) {
	lastActive := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	progress := &models.UserProgress{StreakDays: 3, LastActive: lastActive}

	now := lastActive.Add(24 * time.Hour)
	streak := UpdateStreak(progress, now)

	assert.Equal(t, 4, streak)
	assert.Equal(t, now, progress.LastActive)
}

func TestUpdateStreakGapResets(t *testing.T) {
	lastActive := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	progress := &models.UserProgress{StreakDays: 9, LastActive: lastActive}

	now := lastActive.Add(5 * 24 * time.Hour)
	streak := UpdateStreak(progress, now)

	assert.Equal(t, 1, streak)
	assert.Equal(t, now, progress.LastActive)
}

func TestUpdateStreakZeroValueLastActive(t *testing.T) {
	progress := &models.UserProgress{}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	streak := UpdateStreak(progress, now)

	assert.Equal(t, 1, streak, "huge gap from the zero time resets to 1")
	assert.Equal(t, now, progress.LastActive)
}
