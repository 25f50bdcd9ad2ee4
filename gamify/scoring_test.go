package gamify

import (
	"testing"
	"time"

	"algolearn/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoringQuiz(t *testing.T) *models.Quiz {
	t.Helper()
	questions := []models.QuizQuestion{
		{Type: models.QuestionMultipleChoice, Points: MultipleChoicePoints},
		{Type: models.QuestionMultipleChoice, Points: MultipleChoicePoints},
		{Type: models.QuestionCodeCompletion, Points: CodeCompletionPoints},
	}
	quiz := &models.Quiz{Questions: questions}
	quiz.ID = 7
	quiz.TotalPoints = TotalPoints(questions)
	quiz.PassingScore = DefaultPassingScore(quiz.TotalPoints)
	return quiz
}

func TestQuizPointTotals(t *testing.T) {
	quiz := scoringQuiz(t)

	// 2 multiple choice at 10 + 1 code completion at 20
	assert.Equal(t, 40, quiz.TotalPoints)
	assert.Equal(t, 24, quiz.PassingScore, "default passing score is ceil(0.6*40)")
}

func TestCalculateResultsPassing(t *testing.T) {
	quiz := scoringQuiz(t)
	attempt := &models.QuizAttempt{UserID: 1, QuizID: quiz.ID, StartTime: time.Now()}
	require.NoError(t, attempt.SetAnswers([]models.QuizAnswer{
		{QuestionID: 1, IsCorrect: true, PointsEarned: 10},
		{QuestionID: 2, IsCorrect: false, PointsEarned: 0},
		{QuestionID: 3, IsCorrect: true, PointsEarned: 20},
	}))

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	result, err := CalculateResults(attempt, quiz, now)
	require.NoError(t, err)

	assert.Equal(t, 30, result.Score)
	assert.Equal(t, 40, result.TotalPossible)
	assert.True(t, result.Passed)
	assert.True(t, attempt.Completed)
	require.NotNil(t, attempt.EndTime)
	assert.Equal(t, now, *attempt.EndTime)
}

func TestCalculateResultsAtThreshold(t *testing.T) {
	quiz := scoringQuiz(t)

	// exactly the passing score
	attempt := &models.QuizAttempt{}
	require.NoError(t, attempt.SetAnswers([]models.QuizAnswer{
		{QuestionID: 1, IsCorrect: true, PointsEarned: 10},
		{QuestionID: 2, IsCorrect: false, PointsEarned: 0},
		{QuestionID: 3, IsCorrect: true, PointsEarned: 14},
	}))
	result, err := CalculateResults(attempt, quiz, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 24, result.Score)
	assert.True(t, result.Passed)

	// one point short
	attempt = &models.QuizAttempt{}
	require.NoError(t, attempt.SetAnswers([]models.QuizAnswer{
		{QuestionID: 1, IsCorrect: true, PointsEarned: 10},
		{QuestionID: 2, IsCorrect: false, PointsEarned: 0},
		{QuestionID: 3, IsCorrect: true, PointsEarned: 13},
	}))
	result, err = CalculateResults(attempt, quiz, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 23, result.Score)
	assert.False(t, result.Passed)
}

func TestCalculateResultsRecompute(t *testing.T) {
	quiz := scoringQuiz(t)
	attempt := &models.QuizAttempt{}
	require.NoError(t, attempt.SetAnswers([]models.QuizAnswer{
		{QuestionID: 1, IsCorrect: true, PointsEarned: 10},
	}))

	first, err := CalculateResults(attempt, quiz, time.Now())
	require.NoError(t, err)
	second, err := CalculateResults(attempt, quiz, time.Now())
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Passed, second.Passed)
}

func TestCalculateResultsQuizMissing(t *testing.T) {
	attempt := &models.QuizAttempt{}

	_, err := CalculateResults(attempt, nil, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = CalculateResults(attempt, &models.Quiz{}, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultPassingScore(t *testing.T) {
	assert.Equal(t, 0, DefaultPassingScore(0))
	assert.Equal(t, 6, DefaultPassingScore(10))
	assert.Equal(t, 18, DefaultPassingScore(30))
	assert.Equal(t, 30, DefaultPassingScore(50))
}
