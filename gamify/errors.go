// Package gamify implements the user progress and gamification engine:
// XP and leveling, daily streaks, badge awarding, and quiz scoring.
package gamify

import "errors"

var (
	// ErrNotFound means a referenced algorithm, quiz, or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBadgeType means the requested badge type is not in the catalog.
	ErrInvalidBadgeType = errors.New("invalid badge type")
	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation error")
)
