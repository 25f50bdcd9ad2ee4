package gamify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"algolearn/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XP credited per progress event. Badge rewards come from the catalog.
const (
	XPAlgorithmView     = 5
	XPAlgorithmComplete = 50
	XPDailyLogin        = 10
	XPPathStep          = 15
)

// ProgressService owns the per-user progress ledger: lazy creation, view
// recording, completion transitions, achievements, and the badge checks that
// follow each event. Each operation touches a single user's rows.
type ProgressService struct {
	DB      *gorm.DB
	Awarder *Awarder
	Now     func() time.Time
}

func NewProgressService(db *gorm.DB, awarder *Awarder) *ProgressService {
	return &ProgressService{DB: db, Awarder: awarder, Now: time.Now}
}

// Ledger fetches the user's progress record, creating it on first activity.
func (s *ProgressService) Ledger(userID uint) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := s.DB.Where("user_id = ?", userID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("querying progress: %w", err)
	}

	progress = models.UserProgress{
		UserID:     userID,
		StreakDays: 1,
		LastActive: s.Now(),
	}
	if err := s.DB.Create(&progress).Error; err != nil {
		return nil, fmt.Errorf("creating progress: %w", err)
	}
	return &progress, nil
}

// RecordAlgorithmView upserts the (user, algorithm) view record: first view
// inserts with ViewCount 1, repeat views increment it and refresh LastViewed.
// The upsert is atomic on the (user_id, algorithm_id) unique index, so
// concurrent views cannot create duplicate rows. The view also advances the
// streak, credits view XP, and runs the first-view and explorer badge checks.
func (s *ProgressService) RecordAlgorithmView(userID, algorithmID uint, metadata datatypes.JSON) (*models.AlgorithmProgress, error) {
	var algorithm models.Algorithm
	if err := s.DB.First(&algorithm, algorithmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: algorithm %d", ErrNotFound, algorithmID)
		}
		return nil, fmt.Errorf("querying algorithm: %w", err)
	}

	now := s.Now()
	record := models.AlgorithmProgress{
		UserID:      userID,
		AlgorithmID: algorithmID,
		ViewCount:   1,
		LastViewed:  now,
		Metadata:    metadata,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "algorithm_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"view_count":  gorm.Expr("view_count + 1"),
			"last_viewed": now,
			"metadata":    metadata,
			"updated_at":  now,
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("recording view: %w", err)
	}

	var saved models.AlgorithmProgress
	if err := s.DB.Where("user_id = ? AND algorithm_id = ?", userID, algorithmID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reloading view record: %w", err)
	}

	progress, err := s.Ledger(userID)
	if err != nil {
		return nil, err
	}
	UpdateStreak(progress, now)
	if _, err := AddXP(progress, XPAlgorithmView); err != nil {
		return nil, err
	}

	badge, created, err := s.Awarder.CheckFirstView(userID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.creditBadge(progress, badge); err != nil {
			return nil, err
		}
	}
	var uniqueCount int64
	if err := s.DB.Model(&models.AlgorithmProgress{}).Where("user_id = ?", userID).Count(&uniqueCount).Error; err != nil {
		return nil, fmt.Errorf("counting viewed algorithms: %w", err)
	}
	badge, created, err = s.Awarder.CheckAlgorithmViewMilestone(userID, int(uniqueCount))
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.creditBadge(progress, badge); err != nil {
			return nil, err
		}
	}

	if err := s.checkBadges(userID, progress); err != nil {
		return nil, err
	}
	if err := s.DB.Save(progress).Error; err != nil {
		return nil, fmt.Errorf("saving progress: %w", err)
	}
	return &saved, nil
}

// CompleteAlgorithm marks the algorithm completed for the user. The counter
// bump and XP credit happen only on the transition into completed; calling
// it on an already-completed algorithm returns the record unchanged.
func (s *ProgressService) CompleteAlgorithm(userID, algorithmID uint) (*models.AlgorithmProgress, error) {
	var record models.AlgorithmProgress
	if err := s.DB.Where("user_id = ? AND algorithm_id = ?", userID, algorithmID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: algorithm %d not viewed yet", ErrNotFound, algorithmID)
		}
		return nil, fmt.Errorf("querying view record: %w", err)
	}

	if record.Completed {
		return &record, nil
	}

	now := s.Now()
	record.Completed = true
	record.CompletedAt = &now
	if err := s.DB.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("saving view record: %w", err)
	}

	progress, err := s.Ledger(userID)
	if err != nil {
		return nil, err
	}
	progress.CompletedAlgorithmsCount++
	UpdateStreak(progress, now)
	if _, err := AddXP(progress, XPAlgorithmComplete); err != nil {
		return nil, err
	}
	if err := s.checkBadges(userID, progress); err != nil {
		return nil, err
	}
	if err := s.DB.Save(progress).Error; err != nil {
		return nil, fmt.Errorf("saving progress: %w", err)
	}
	return &record, nil
}

// CompleteQuiz records a passed attempt's effect on the ledger. The counter
// and XP apply only when this is the user's first passed attempt for the
// quiz; retaking an already-passed quiz changes nothing.
func (s *ProgressService) CompleteQuiz(userID uint, quiz *models.Quiz, attempt *models.QuizAttempt) error {
	if !attempt.Passed {
		return nil
	}

	var prior int64
	err := s.DB.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND passed = ? AND id <> ?", userID, quiz.ID, true, attempt.ID).
		Count(&prior).Error
	if err != nil {
		return fmt.Errorf("counting passed attempts: %w", err)
	}
	if prior > 0 {
		return nil
	}

	progress, err := s.Ledger(userID)
	if err != nil {
		return err
	}
	progress.CompletedQuizzesCount++
	UpdateStreak(progress, s.Now())
	if _, err := AddXP(progress, quiz.XPReward); err != nil {
		return err
	}
	if err := s.checkBadges(userID, progress); err != nil {
		return err
	}
	if err := s.DB.Save(progress).Error; err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// StartPath creates the user's progress record for a learning path. Starting
// an already-started path returns the existing record unchanged.
func (s *ProgressService) StartPath(userID, pathID uint) (*models.PathProgress, error) {
	var path models.LearningPath
	if err := s.DB.First(&path, pathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: learning path %d", ErrNotFound, pathID)
		}
		return nil, fmt.Errorf("querying path: %w", err)
	}

	var record models.PathProgress
	err := s.DB.Where("user_id = ? AND path_id = ?", userID, pathID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("querying path progress: %w", err)
	}

	record = models.PathProgress{
		UserID:    userID,
		PathID:    pathID,
		StartedAt: s.Now(),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("creating path progress: %w", err)
	}
	return &record, nil
}

// AdvancePath moves the user to the given step and recomputes the percentage
// from the path's step count. Reaching 100 marks the path completed, once:
// the counter bump and path XP fire only on that transition. All path
// progress mutation goes through here.
func (s *ProgressService) AdvancePath(userID, pathID uint, step int) (*models.PathProgress, error) {
	if step < 0 {
		return nil, fmt.Errorf("%w: step must be non-negative", ErrValidation)
	}

	var path models.LearningPath
	if err := s.DB.Preload("Steps").First(&path, pathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: learning path %d", ErrNotFound, pathID)
		}
		return nil, fmt.Errorf("querying path: %w", err)
	}
	totalSteps := len(path.Steps)
	if totalSteps == 0 {
		return nil, fmt.Errorf("%w: path has no steps", ErrValidation)
	}
	if step > totalSteps {
		step = totalSteps
	}

	var record models.PathProgress
	if err := s.DB.Where("user_id = ? AND path_id = ?", userID, pathID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: path %d not started", ErrNotFound, pathID)
		}
		return nil, fmt.Errorf("querying path progress: %w", err)
	}

	advanced := step > record.CurrentStep
	record.CurrentStep = step
	record.Progress = step * 100 / totalSteps

	now := s.Now()
	completedNow := record.Progress >= 100 && record.CompletedAt == nil
	if completedNow {
		record.Progress = 100
		record.CompletedAt = &now
	}
	if err := s.DB.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("saving path progress: %w", err)
	}

	progress, err := s.Ledger(userID)
	if err != nil {
		return nil, err
	}
	UpdateStreak(progress, now)
	if advanced {
		if _, err := AddXP(progress, XPPathStep); err != nil {
			return nil, err
		}
	}
	if completedNow {
		progress.CompletedLearningPathsCount++
		if _, err := AddXP(progress, path.XPReward); err != nil {
			return nil, err
		}
	}
	if err := s.checkBadges(userID, progress); err != nil {
		return nil, err
	}
	if err := s.DB.Save(progress).Error; err != nil {
		return nil, fmt.Errorf("saving progress: %w", err)
	}
	return &record, nil
}

// RecordLogin advances the streak from a login event and credits the daily
// login XP when the login lands in a new day window.
func (s *ProgressService) RecordLogin(userID uint) (*models.UserProgress, error) {
	progress, err := s.Ledger(userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	before := progress.LastActive
	UpdateStreak(progress, now)
	if !progress.LastActive.Equal(before) {
		if _, err := AddXP(progress, XPDailyLogin); err != nil {
			return nil, err
		}
	}
	if err := s.checkBadges(userID, progress); err != nil {
		return nil, err
	}
	if err := s.DB.Save(progress).Error; err != nil {
		return nil, fmt.Errorf("saving progress: %w", err)
	}
	return progress, nil
}

// AddAchievement appends an entry to the ledger's achievements list unless
// one with the same (type, related entity) already exists. The list order is
// earn order.
func (s *ProgressService) AddAchievement(progress *models.UserProgress, achievement models.Achievement) error {
	list, err := decodeAchievements(progress)
	if err != nil {
		return err
	}

	for _, existing := range list {
		if existing.Type == achievement.Type && existing.RelatedEntity == achievement.RelatedEntity {
			return nil
		}
	}

	list = append(list, achievement)
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding achievements: %w", err)
	}
	progress.Achievements = raw
	return nil
}

func decodeAchievements(progress *models.UserProgress) ([]models.Achievement, error) {
	if len(progress.Achievements) == 0 {
		return nil, nil
	}
	var list []models.Achievement
	if err := json.Unmarshal(progress.Achievements, &list); err != nil {
		return nil, fmt.Errorf("%w: malformed achievements: %v", ErrValidation, err)
	}
	return list, nil
}

// Snapshot assembles the counters the badge requirements evaluate against.
func (s *ProgressService) Snapshot(userID uint, progress *models.UserProgress) (Snapshot, error) {
	var uniqueAlgorithms int64
	if err := s.DB.Model(&models.AlgorithmProgress{}).Where("user_id = ?", userID).Count(&uniqueAlgorithms).Error; err != nil {
		return Snapshot{}, fmt.Errorf("counting viewed algorithms: %w", err)
	}

	return Snapshot{
		UniqueAlgorithms:    int(uniqueAlgorithms),
		CompletedAlgorithms: progress.CompletedAlgorithmsCount,
		CompletedQuizzes:    progress.CompletedQuizzesCount,
		CompletedPaths:      progress.CompletedLearningPathsCount,
		StreakDays:          progress.StreakDays,
		Level:               progress.Level,
	}, nil
}

// creditBadge applies a newly earned badge's XP reward to the ledger and
// mirrors it into the achievements list. Called exactly once per award.
func (s *ProgressService) creditBadge(progress *models.UserProgress, badge models.UserBadge) error {
	if _, err := AddXP(progress, badge.XPReward); err != nil {
		return err
	}
	return s.AddAchievement(progress, models.Achievement{
		Type:        string(badge.BadgeType),
		Name:        badge.Name,
		Description: badge.Description,
		Icon:        badge.Icon,
		EarnedAt:    badge.EarnedAt,
	})
}

// checkBadges runs every catalog requirement against the current snapshot,
// credits the XP of newly earned badges to the ledger, and mirrors each new
// badge into the achievements list. The ledger is mutated, not saved.
func (s *ProgressService) checkBadges(userID uint, progress *models.UserProgress) error {
	snap, err := s.Snapshot(userID, progress)
	if err != nil {
		return err
	}

	earned, _, err := s.Awarder.CheckAll(userID, snap)
	if err != nil {
		return err
	}
	for _, badge := range earned {
		if err := s.creditBadge(progress, badge); err != nil {
			return err
		}
	}
	return nil
}

// EarnedBadges lists the user's badges in earn order. Lookup failures
// degrade to an empty list so progress screens stay renderable.
func (s *ProgressService) EarnedBadges(userID uint) []models.UserBadge {
	var badges []models.UserBadge
	if err := s.DB.Where("user_id = ?", userID).Order("earned_at ASC").Find(&badges).Error; err != nil {
		return nil
	}
	return badges
}
