package models

import (
	"time"

	"gorm.io/gorm"
)

type BadgeType string

const (
	BadgeFirstView       BadgeType = "first_view"
	BadgeFirstComplete   BadgeType = "first_complete"
	BadgeExplorer        BadgeType = "algorithm_explorer"
	BadgeAlgorithmMaster BadgeType = "algorithm_master"
	BadgeFirstQuiz       BadgeType = "first_quiz"
	BadgeQuizGenius      BadgeType = "quiz_genius"
	BadgeWeekStreak      BadgeType = "week_streak"
	BadgeMonthStreak     BadgeType = "month_streak"
	BadgePathPioneer     BadgeType = "path_pioneer"
	BadgePathChampion    BadgeType = "path_champion"
	BadgeLevelFive       BadgeType = "level_five"
)

// UserBadge is one earned badge, unique per (user_id, badge_type). The badge
// definition fields are denormalized at award time so earned badges keep
// rendering even if the catalog changes. Rows are never updated after
// creation; there is no revocation.
type UserBadge struct {
	gorm.Model
	UserID      uint      `gorm:"uniqueIndex:idx_user_badge"`
	BadgeType   BadgeType `gorm:"type:text;uniqueIndex:idx_user_badge"`
	Name        string
	Description string
	Icon        string
	XPReward    int
	BadgeLevel  int // 1..3 rarity tier
	EarnedAt    time.Time
}
