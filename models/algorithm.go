package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Algorithm struct {
	gorm.Model
	Title           string
	ShortDesc       string
	Description     string
	Category        string // sorting, searching, graphs, trees, dynamic-programming
	Difficulty      string // beginner, intermediate, advanced
	TimeComplexity  string
	SpaceComplexity string
	AuthorID        uint
	LogoURL         string
	CodeSamples     []CodeSample
}

type CodeSample struct {
	gorm.Model
	AlgorithmID   uint
	Language      string
	Code          string
	Explanation   string
	SequenceOrder int
}

// AlgorithmProgress is the per-user view/completion record for one algorithm,
// unique per (user_id, algorithm_id). View recording upserts this row
// atomically so concurrent requests cannot create duplicates.
type AlgorithmProgress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_user_algorithm"`
	AlgorithmID uint `gorm:"uniqueIndex:idx_user_algorithm"`
	ViewCount   int  `gorm:"default:1"`
	LastViewed  time.Time
	Completed   bool `gorm:"default:false"`
	CompletedAt *time.Time
	Notes       string
	IsFavorite  bool           `gorm:"default:false"`
	Metadata    datatypes.JSON // client context of the last view (screen, platform)
}
