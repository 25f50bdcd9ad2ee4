package models

import (
	"time"

	"gorm.io/gorm"
)

type LearningPath struct {
	gorm.Model
	Title       string
	ShortDesc   string
	Description string
	Difficulty  string // beginner, intermediate, advanced
	AuthorID    uint
	LogoURL     string
	XPReward    int `gorm:"default:100"`
	Steps       []PathStep `gorm:"foreignKey:PathID"`
}

type PathStep struct {
	gorm.Model
	PathID        uint
	Title         string
	Description   string
	AlgorithmID   *uint
	QuizID        *uint
	SequenceOrder int
}

// PathProgress tracks one user's position in a learning path, unique per
// (user_id, path_id). Progress is a percentage in [0, 100].
type PathProgress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_user_path"`
	PathID      uint `gorm:"uniqueIndex:idx_user_path"`
	StartedAt   time.Time
	CompletedAt *time.Time
	Progress    int `gorm:"default:0"`
	CurrentStep int `gorm:"default:0"`
}
