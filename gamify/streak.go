package gamify

import (
	"time"

	"algolearn/models"
)

// UpdateStreak advances the consecutive-days counter from a new activity at
// now. Day gaps are whole 24h periods of elapsed time since LastActive, not
// calendar days, so activity 23h59m apart still lands in the same window.
// A zero-day gap leaves the record untouched (LastActive keeps its earlier
// value), a one-day gap extends the streak, anything longer resets it to 1.
// Returns the resulting streak count; persisting is the caller's job.
func UpdateStreak(progress *models.UserProgress, now time.Time) int {
	gap := int(now.Sub(progress.LastActive).Abs().Hours() / 24)

	switch {
	case gap == 0:
		// same-day activity, nothing to do
	case gap == 1:
		progress.StreakDays++
		progress.LastActive = now
	default:
		progress.StreakDays = 1
		progress.LastActive = now
	}

	return progress.StreakDays
}
