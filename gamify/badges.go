package gamify

import (
	"errors"
	"fmt"
	"time"

	"algolearn/models"

	"gorm.io/gorm"
)

// Snapshot is the subset of a user's progress the badge requirements are
// evaluated against.
type Snapshot struct {
	UniqueAlgorithms    int
	CompletedAlgorithms int
	CompletedQuizzes    int
	CompletedPaths      int
	StreakDays          int
	Level               int
}

// Requirement decides whether a badge is earned given a progress snapshot.
type Requirement func(Snapshot) bool

type BadgeDefinition struct {
	Type        models.BadgeType
	Name        string
	Description string
	Icon        string
	XPReward    int
	Level       int // 1..3 rarity tier
	Requirement Requirement
}

// Catalog is the immutable badge reference table, loaded once at startup and
// passed explicitly to the Awarder.
type Catalog struct {
	defs  map[models.BadgeType]BadgeDefinition
	order []models.BadgeType
}

func NewCatalog(defs []BadgeDefinition) *Catalog {
	c := &Catalog{defs: make(map[models.BadgeType]BadgeDefinition, len(defs))}
	for _, def := range defs {
		if _, exists := c.defs[def.Type]; exists {
			continue
		}
		c.defs[def.Type] = def
		c.order = append(c.order, def.Type)
	}
	return c
}

func (c *Catalog) Lookup(t models.BadgeType) (BadgeDefinition, bool) {
	def, ok := c.defs[t]
	return def, ok
}

// Definitions returns the catalog in declaration order.
func (c *Catalog) Definitions() []BadgeDefinition {
	defs := make([]BadgeDefinition, 0, len(c.order))
	for _, t := range c.order {
		defs = append(defs, c.defs[t])
	}
	return defs
}

// DefaultCatalog builds the standard badge set. Every requirement is a
// predicate over the same Snapshot shape so the catalog and the awarding
// logic cannot drift apart.
func DefaultCatalog() *Catalog {
	return NewCatalog([]BadgeDefinition{
		{
			Type:        models.BadgeFirstView,
			Name:        "First Steps",
			Description: "View your first algorithm",
			Icon:        "footprints",
			XPReward:    10,
			Level:       1,
			Requirement: func(s Snapshot) bool { return s.UniqueAlgorithms >= 1 },
		},
		{
			Type:        models.BadgeFirstComplete,
			Name:        "Getting Serious",
			Description: "Complete your first algorithm",
			Icon:        "check-circle",
			XPReward:    20,
			Level:       1,
			Requirement: func(s Snapshot) bool { return s.CompletedAlgorithms >= 1 },
		},
		{
			Type:        models.BadgeExplorer,
			Name:        "Algorithm Explorer",
			Description: "View 20 different algorithms",
			Icon:        "compass",
			XPReward:    100,
			Level:       2,
			Requirement: func(s Snapshot) bool { return s.UniqueAlgorithms >= 20 },
		},
		{
			Type:        models.BadgeAlgorithmMaster,
			Name:        "Algorithm Master",
			Description: "Complete 10 algorithms",
			Icon:        "crown",
			XPReward:    150,
			Level:       2,
			Requirement: func(s Snapshot) bool { return s.CompletedAlgorithms >= 10 },
		},
		{
			Type:        models.BadgeFirstQuiz,
			Name:        "Quiz Rookie",
			Description: "Pass your first quiz",
			Icon:        "pencil",
			XPReward:    20,
			Level:       1,
			Requirement: func(s Snapshot) bool { return s.CompletedQuizzes >= 1 },
		},
		{
			Type:        models.BadgeQuizGenius,
			Name:        "Quiz Genius",
			Description: "Pass 10 quizzes",
			Icon:        "brain",
			XPReward:    150,
			Level:       2,
			Requirement: func(s Snapshot) bool { return s.CompletedQuizzes >= 10 },
		},
		{
			Type:        models.BadgeWeekStreak,
			Name:        "Consistent",
			Description: "Keep a 7-day streak",
			Icon:        "flame",
			XPReward:    50,
			Level:       1,
			Requirement: func(s Snapshot) bool { return s.StreakDays >= 7 },
		},
		{
			Type:        models.BadgeMonthStreak,
			Name:        "Unstoppable",
			Description: "Keep a 30-day streak",
			Icon:        "zap",
			XPReward:    200,
			Level:       3,
			Requirement: func(s Snapshot) bool { return s.StreakDays >= 30 },
		},
		{
			Type:        models.BadgePathPioneer,
			Name:        "Path Pioneer",
			Description: "Complete a learning path",
			Icon:        "map",
			XPReward:    50,
			Level:       2,
			Requirement: func(s Snapshot) bool { return s.CompletedPaths >= 1 },
		},
		{
			Type:        models.BadgePathChampion,
			Name:        "Path Champion",
			Description: "Complete 5 learning paths",
			Icon:        "trophy",
			XPReward:    250,
			Level:       3,
			Requirement: func(s Snapshot) bool { return s.CompletedPaths >= 5 },
		},
		{
			Type:        models.BadgeLevelFive,
			Name:        "Rising Star",
			Description: "Reach level 5",
			Icon:        "star",
			XPReward:    100,
			Level:       2,
			Requirement: func(s Snapshot) bool { return s.Level >= 5 },
		},
	})
}

// Awarder persists earned badges. A badge type can be earned at most once
// per user: earning is guarded by an existence check and, as a second line
// of defense, the (user_id, badge_type) unique index.
type Awarder struct {
	DB      *gorm.DB
	Catalog *Catalog
	Now     func() time.Time
}

func NewAwarder(db *gorm.DB, catalog *Catalog) *Awarder {
	return &Awarder{DB: db, Catalog: catalog, Now: time.Now}
}

// AwardBadge transitions (userID, badgeType) to earned. If the badge is
// already earned the existing row is returned with created=false; calling it
// again is always safe. The badge's XP reward is NOT credited here — callers
// apply AddXP(progress, badge.XPReward) exactly once when created is true.
func (a *Awarder) AwardBadge(userID uint, badgeType models.BadgeType) (models.UserBadge, bool, error) {
	def, ok := a.Catalog.Lookup(badgeType)
	if !ok {
		return models.UserBadge{}, false, fmt.Errorf("%w: %q", ErrInvalidBadgeType, badgeType)
	}

	var badge models.UserBadge
	err := a.DB.Where("user_id = ? AND badge_type = ?", userID, badgeType).First(&badge).Error
	if err == nil {
		return badge, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserBadge{}, false, fmt.Errorf("querying user badge: %w", err)
	}

	badge = models.UserBadge{
		UserID:      userID,
		BadgeType:   def.Type,
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		XPReward:    def.XPReward,
		BadgeLevel:  def.Level,
		EarnedAt:    a.Now(),
	}
	if err := a.DB.Create(&badge).Error; err != nil {
		// A concurrent request may have won the insert; the unique index
		// rejects ours, so re-read and return the winner's row.
		var existing models.UserBadge
		if readErr := a.DB.Where("user_id = ? AND badge_type = ?", userID, badgeType).First(&existing).Error; readErr == nil {
			return existing, false, nil
		}
		return models.UserBadge{}, false, fmt.Errorf("creating user badge: %w", err)
	}
	return badge, true, nil
}

// CheckAll evaluates every catalog requirement against the snapshot and
// awards the qualifying badges. Returns the newly created badges and the sum
// of their XP rewards, which the caller credits to the ledger.
func (a *Awarder) CheckAll(userID uint, snap Snapshot) ([]models.UserBadge, int, error) {
	var earned []models.UserBadge
	var xp int
	for _, def := range a.Catalog.Definitions() {
		if !def.Requirement(snap) {
			continue
		}
		badge, created, err := a.AwardBadge(userID, def.Type)
		if err != nil {
			return earned, xp, err
		}
		if created {
			earned = append(earned, badge)
			xp += badge.XPReward
		}
	}
	return earned, xp, nil
}

// CheckFirstView awards the first-view badge after a recorded algorithm view.
func (a *Awarder) CheckFirstView(userID uint) (models.UserBadge, bool, error) {
	return a.AwardBadge(userID, models.BadgeFirstView)
}

// CheckAlgorithmViewMilestone awards the explorer badge once the user has
// viewed enough distinct algorithms.
func (a *Awarder) CheckAlgorithmViewMilestone(userID uint, uniqueCount int) (models.UserBadge, bool, error) {
	def, ok := a.Catalog.Lookup(models.BadgeExplorer)
	if !ok {
		return models.UserBadge{}, false, fmt.Errorf("%w: %q", ErrInvalidBadgeType, models.BadgeExplorer)
	}
	if !def.Requirement(Snapshot{UniqueAlgorithms: uniqueCount}) {
		return models.UserBadge{}, false, nil
	}
	return a.AwardBadge(userID, models.BadgeExplorer)
}
