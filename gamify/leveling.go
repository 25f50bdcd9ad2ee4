package gamify

import (
	"fmt"
	"math"

	"algolearn/models"
)

const (
	levelBaseXP   = 100
	levelExponent = 1.5
)

// Level maps cumulative XP to a level number using
// level = floor((xp/100)^(1/1.5)). Monotonic non-decreasing in XP.
func Level(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}
	return int(math.Floor(math.Pow(float64(totalXP)/levelBaseXP, 1/levelExponent)))
}

// NextLevelXP returns the cumulative XP threshold for the level after the
// given one: ceil(100 * (level+1)^1.5).
func NextLevelXP(level int) int {
	return int(math.Ceil(levelBaseXP * math.Pow(float64(level+1), levelExponent)))
}

// XPResult reports the outcome of an XP credit. On a level-up, LevelsGained
// and NewLevel are set; otherwise CurrentXP and NextLevelXP describe how far
// the user is from the next level.
type XPResult struct {
	LevelUp      bool `json:"level_up"`
	LevelsGained int  `json:"levels_gained,omitempty"`
	NewLevel     int  `json:"new_level,omitempty"`
	CurrentXP    int  `json:"current_xp,omitempty"`
	NextLevelXP  int  `json:"next_level_xp,omitempty"`
}

// AddXP credits points to the ledger and recomputes the derived level.
// Points must be non-negative. Mutates only TotalXP and Level; persisting the
// ledger is the caller's responsibility.
func AddXP(progress *models.UserProgress, points int) (XPResult, error) {
	if points < 0 {
		return XPResult{}, fmt.Errorf("%w: xp points must be non-negative, got %d", ErrValidation, points)
	}

	oldLevel := progress.Level
	progress.TotalXP += points
	progress.Level = Level(progress.TotalXP)

	if progress.Level > oldLevel {
		return XPResult{
			LevelUp:      true,
			LevelsGained: progress.Level - oldLevel,
			NewLevel:     progress.Level,
		}, nil
	}

	return XPResult{
		CurrentXP:   progress.TotalXP,
		NextLevelXP: NextLevelXP(progress.Level),
	}, nil
}
