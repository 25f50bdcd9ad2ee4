package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionCodeCompletion = "code_completion"
)

type Quiz struct {
	gorm.Model
	AlgorithmID  *uint
	Title        string
	ShortDesc    string
	Description  string
	Difficulty   string // beginner, intermediate, advanced
	AuthorID     uint
	TotalPoints  int
	PassingScore int
	XPReward     int `gorm:"default:25"`
	Questions    []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint
	Type          string // multiple_choice, code_completion
	Prompt        string
	Options       datatypes.JSON // JSON array of option strings (multiple choice)
	CorrectOption int            // index into Options (multiple choice)
	CodeTemplate  string         // expected completion (code questions, graded externally)
	Points        int
	SequenceOrder int
}

// QuizAttempt stores one user's run through a quiz. Score and Passed are
// computed once at completion from the graded answer set and then immutable.
type QuizAttempt struct {
	gorm.Model
	UserID    uint
	QuizID    uint
	StartTime time.Time
	EndTime   *time.Time
	Completed bool           `gorm:"default:false"`
	Answers   datatypes.JSON // []QuizAnswer
	Score     int            `gorm:"default:0"`
	Passed    bool           `gorm:"default:false"`
}

type QuizAnswer struct {
	QuestionID   uint   `json:"question_id"`
	Selected     int    `json:"selected"`            // multiple choice
	Submitted    string `json:"submitted,omitempty"` // code completion
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
}

func (a *QuizAttempt) DecodeAnswers() ([]QuizAnswer, error) {
	if len(a.Answers) == 0 {
		return nil, nil
	}
	var answers []QuizAnswer
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *QuizAttempt) SetAnswers(answers []QuizAnswer) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	a.Answers = raw
	return nil
}
