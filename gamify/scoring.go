package gamify

import (
	"fmt"
	"math"
	"time"

	"algolearn/models"
)

const (
	MultipleChoicePoints = 10
	CodeCompletionPoints = 20

	passingRatio = 0.6
)

// QuestionPoints returns the fixed point weight for a question type.
func QuestionPoints(questionType string) int {
	if questionType == models.QuestionCodeCompletion {
		return CodeCompletionPoints
	}
	return MultipleChoicePoints
}

// TotalPoints sums the fixed per-question weights:
// 10 per multiple-choice question, 20 per code-completion question.
func TotalPoints(questions []models.QuizQuestion) int {
	total := 0
	for _, q := range questions {
		total += QuestionPoints(q.Type)
	}
	return total
}

// DefaultPassingScore is ceil(0.6 * totalPoints), applied at quiz creation
// when no explicit passing score is set.
func DefaultPassingScore(totalPoints int) int {
	return int(math.Ceil(passingRatio * float64(totalPoints)))
}

type QuizResult struct {
	Score         int  `json:"score"`
	TotalPossible int  `json:"total_possible"`
	Passed        bool `json:"passed"`
}

// CalculateResults finalizes an attempt from its already-graded answers:
// sums PointsEarned, sets Score, Passed, Completed and EndTime on the
// attempt. Pure given a fixed answer set, so recomputing a finished attempt
// yields the same result. Persisting the attempt is the caller's job.
func CalculateResults(attempt *models.QuizAttempt, quiz *models.Quiz, now time.Time) (QuizResult, error) {
	if quiz == nil || quiz.ID == 0 {
		return QuizResult{}, fmt.Errorf("%w: quiz", ErrNotFound)
	}

	answers, err := attempt.DecodeAnswers()
	if err != nil {
		return QuizResult{}, fmt.Errorf("%w: malformed answers: %v", ErrValidation, err)
	}

	score := 0
	for _, answer := range answers {
		score += answer.PointsEarned
	}

	attempt.Score = score
	attempt.Passed = score >= quiz.PassingScore
	attempt.Completed = true
	attempt.EndTime = &now

	return QuizResult{
		Score:         score,
		TotalPossible: quiz.TotalPoints,
		Passed:        attempt.Passed,
	}, nil
}
