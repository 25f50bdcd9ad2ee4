package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
	AvatarURL    string
}

// UserProgress is the per-user gamification ledger. Level is derived from
// TotalXP and never set directly; the completed counters are bumped exactly
// once per entity's transition into completed.
type UserProgress struct {
	gorm.Model
	UserID                      uint `gorm:"uniqueIndex"`
	TotalXP                     int  `gorm:"default:0"`
	Level                       int  `gorm:"default:0"`
	StreakDays                  int  `gorm:"default:0"`
	LastActive                  time.Time
	CompletedAlgorithmsCount    int            `gorm:"default:0"`
	CompletedQuizzesCount       int            `gorm:"default:0"`
	CompletedLearningPathsCount int            `gorm:"default:0"`
	Achievements                datatypes.JSON // ordered []Achievement
}

// Achievement entries live embedded in UserProgress.Achievements. At most one
// entry may exist per (Type, RelatedEntity) pair.
type Achievement struct {
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	EarnedAt      time.Time `json:"earned_at"`
	RelatedEntity string    `json:"related_entity,omitempty"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
