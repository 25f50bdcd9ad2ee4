package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"algolearn/config"
	"algolearn/gamify"
	"algolearn/models"
	"algolearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *gamify.ProgressService
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, progress *gamify.ProgressService) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, Progress: progress}
}

func (qc *QuizzesController) GetQuizzes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	difficulty := c.Query("difficulty")

	query := qc.DB.Model(&models.Quiz{}).Preload("Questions")
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var quizzes []models.Quiz
	query.Order("title ASC").Find(&quizzes)

	var result []fiber.Map
	for _, quiz := range quizzes {
		var best models.QuizAttempt
		qc.DB.Where("user_id = ? AND quiz_id = ? AND completed = ?", userID, quiz.ID, true).
			Order("score DESC").
			First(&best)

		result = append(result, fiber.Map{
			"id":            quiz.ID,
			"title":         quiz.Title,
			"description":   quiz.ShortDesc,
			"difficulty":    quiz.Difficulty,
			"questions":     len(quiz.Questions),
			"total_points":  quiz.TotalPoints,
			"passing_score": quiz.PassingScore,
			"best_score":    best.Score,
			"passed":        best.Passed,
		})
	}

	return c.JSON(result)
}

func (qc *QuizzesController) GetQuizDetails(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, qc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Correct answers and code templates stay server-side.
	var questions []fiber.Map
	for _, q := range quiz.Questions {
		var options []string
		if len(q.Options) > 0 {
			json.Unmarshal(q.Options, &options)
		}

		questions = append(questions, fiber.Map{
			"id":      q.ID,
			"type":    q.Type,
			"prompt":  q.Prompt,
			"options": options,
			"points":  q.Points,
			"order":   q.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"quiz": fiber.Map{
			"id":            quiz.ID,
			"title":         quiz.Title,
			"short_desc":    quiz.ShortDesc,
			"description":   quiz.Description,
			"difficulty":    quiz.Difficulty,
			"algorithm_id":  quiz.AlgorithmID,
			"total_points":  quiz.TotalPoints,
			"passing_score": quiz.PassingScore,
			"questions":     questions,
		},
	})
}

func (qc *QuizzesController) StartAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	attempt := models.QuizAttempt{
		UserID:    userID,
		QuizID:    quiz.ID,
		StartTime: time.Now(),
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create attempt",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Attempt started",
		"attempt": fiber.Map{
			"id":         attempt.ID,
			"quiz_id":    attempt.QuizID,
			"start_time": attempt.StartTime,
		},
	})
}

// SubmitAttempt grades the submitted answers, finalizes the attempt score,
// and on a pass records the quiz completion in the progress ledger.
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}
	attemptID, err := strconv.Atoi(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attempt ID",
		})
	}

	type AnswerInput struct {
		QuestionID uint   `json:"question_id"`
		Selected   int    `json:"selected"`
		Submitted  string `json:"submitted"`
	}
	var input struct {
		Answers []AnswerInput `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var attempt models.QuizAttempt
	if err := qc.DB.Where("id = ? AND user_id = ? AND quiz_id = ?", attemptID, userID, quizID).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Attempt not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Re-submissions recompute the score but must not re-run the ledger
	// transition below.
	alreadyPassed := attempt.Completed && attempt.Passed

	questions := make(map[uint]models.QuizQuestion, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}

	var answers []models.QuizAnswer
	for _, a := range input.Answers {
		question, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		// one graded answer per question, repeats are ignored
		delete(questions, a.QuestionID)

		answer := models.QuizAnswer{
			QuestionID: a.QuestionID,
			Selected:   a.Selected,
			Submitted:  a.Submitted,
		}
		switch question.Type {
		case models.QuestionCodeCompletion:
			answer.IsCorrect = gradeCodeAnswer(a.Submitted, question.CodeTemplate)
		default:
			answer.IsCorrect = a.Selected == question.CorrectOption
		}
		if answer.IsCorrect {
			answer.PointsEarned = question.Points
		}
		answers = append(answers, answer)
	}

	if err := attempt.SetAnswers(answers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not encode answers",
		})
	}

	result, err := gamify.CalculateResults(&attempt, &quiz, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not calculate results",
		})
	}

	if err := qc.DB.Save(&attempt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save attempt",
		})
	}

	if alreadyPassed {
		return c.JSON(fiber.Map{
			"message": "Attempt submitted",
			"result": fiber.Map{
				"score":          result.Score,
				"total_possible": result.TotalPossible,
				"passed":         result.Passed,
			},
		})
	}

	if err := qc.Progress.CompleteQuiz(userID, &quiz, &attempt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update progress",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Attempt submitted",
		"result": fiber.Map{
			"score":          result.Score,
			"total_possible": result.TotalPossible,
			"passed":         result.Passed,
		},
	})
}

func (qc *QuizzesController) GetQuizResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var attempt models.QuizAttempt
	if err := qc.DB.Where("user_id = ? AND quiz_id = ? AND completed = ?", userID, quizID, true).
		Order("end_time DESC").
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No completed attempts",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	answers, _ := attempt.DecodeAnswers()

	return c.JSON(fiber.Map{
		"result": fiber.Map{
			"attempt_id": attempt.ID,
			"score":      attempt.Score,
			"passed":     attempt.Passed,
			"start_time": attempt.StartTime,
			"end_time":   attempt.EndTime,
			"answers":    answers,
		},
	})
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type QuestionInput struct {
		Type          string   `json:"type"`
		Prompt        string   `json:"prompt"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
		CodeTemplate  string   `json:"code_template"`
		SequenceOrder int      `json:"order"`
	}
	var input struct {
		AlgorithmID  *uint           `json:"algorithm_id"`
		Title        string          `json:"title"`
		ShortDesc    string          `json:"short_desc"`
		Description  string          `json:"description"`
		Difficulty   string          `json:"difficulty"`
		PassingScore int             `json:"passing_score"`
		XPReward     int             `json:"xp_reward"`
		Questions    []QuestionInput `json:"questions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := validateQuizInput(input.Title, len(input.Questions)); len(errs) > 0 {
		return utils.ValidationError(c, errs)
	}

	quiz := models.Quiz{
		AlgorithmID: input.AlgorithmID,
		Title:       input.Title,
		ShortDesc:   input.ShortDesc,
		Description: input.Description,
		Difficulty:  input.Difficulty,
		AuthorID:    userID,
	}
	if input.XPReward > 0 {
		quiz.XPReward = input.XPReward
	}

	for i, q := range input.Questions {
		question := models.QuizQuestion{
			Type:          q.Type,
			Prompt:        q.Prompt,
			CorrectOption: q.CorrectOption,
			CodeTemplate:  q.CodeTemplate,
			Points:        gamify.QuestionPoints(q.Type),
			SequenceOrder: q.SequenceOrder,
		}
		if question.SequenceOrder == 0 {
			question.SequenceOrder = i + 1
		}

		if q.Type != models.QuestionCodeCompletion {
			question.Type = models.QuestionMultipleChoice
			if len(q.Options) < 2 {
				return utils.ValidationError(c, map[string]string{
					fmt.Sprintf("questions[%d].options", i): "at least 2 options required",
				})
			}
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return utils.ValidationError(c, map[string]string{
					fmt.Sprintf("questions[%d].correct_option", i): "must index one of the options",
				})
			}
			raw, _ := json.Marshal(q.Options)
			question.Options = raw
		} else if strings.TrimSpace(q.CodeTemplate) == "" {
			return utils.ValidationError(c, map[string]string{
				fmt.Sprintf("questions[%d].code_template", i): "code template is required",
			})
		}

		quiz.Questions = append(quiz.Questions, question)
	}

	quiz.TotalPoints = gamify.TotalPoints(quiz.Questions)
	if input.PassingScore > 0 {
		quiz.PassingScore = input.PassingScore
	} else {
		quiz.PassingScore = gamify.DefaultPassingScore(quiz.TotalPoints)
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

func validateQuizInput(title string, questionCount int) map[string]string {
	errs := make(map[string]string)
	if title == "" {
		errs["title"] = "title is required"
	}
	if questionCount == 0 {
		errs["questions"] = "at least one question required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// gradeCodeAnswer checks a code-completion submission against the expected
// template, ignoring leading/trailing whitespace and line-ending differences.
func gradeCodeAnswer(submitted, template string) bool {
	normalize := func(s string) string {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " \t")
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return normalize(submitted) != "" && normalize(submitted) == normalize(template)
}
