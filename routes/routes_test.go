package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"algolearn/config"
	"algolearn/models"
	"algolearn/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	app := fiber.New()
	SetupRoutes(app, db, cfg)

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// registerUser registers via the API and returns the token.
func (e *testEnv) registerUser(t *testing.T, username string, admin bool) string {
	t.Helper()

	status, result := e.request(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)

	if admin {
		require.NoError(t, e.db.Model(&models.User{}).
			Where("username = ?", username).
			Update("role", "admin").Error)
	}
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", false)

	status, result := env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])
	assert.Equal(t, float64(1), result["streak_days"], "first login starts a streak")

	status, _ = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "GET", "/api/progress", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.request(t, "GET", "/api/algorithms/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.registerUser(t, "bob", false)

	status, result := env.request(t, "POST", "/api/admin/algorithms", userToken, map[string]string{
		"title": "Dijkstra",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "Forbidden", result["error"])
}

func TestAlgorithmViewFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerUser(t, "instructor", true)
	userToken := env.registerUser(t, "student", false)

	status, created := env.request(t, "POST", "/api/admin/algorithms", adminToken, map[string]interface{}{
		"title":      "Binary Search",
		"short_desc": "Halve the search space",
		"category":   "searching",
		"difficulty": "beginner",
	})
	require.Equal(t, fiber.StatusOK, status)
	algorithmID := created["algorithm"].(map[string]interface{})["ID"].(float64)

	viewPath := fmt.Sprintf("/api/algorithms/%d/view", int(algorithmID))
	status, result := env.request(t, "POST", viewPath, userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	view := result["view"].(map[string]interface{})
	assert.Equal(t, float64(1), view["view_count"])

	status, result = env.request(t, "POST", viewPath, userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	view = result["view"].(map[string]interface{})
	assert.Equal(t, float64(2), view["view_count"])

	// first view earned the first-steps badge
	status, result = env.request(t, "GET", "/api/badges/earned", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	badges := result["badges"].([]interface{})
	require.Len(t, badges, 1)

	status, result = env.request(t, "GET", "/api/progress/overview", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["algorithms_viewed"])
	assert.Greater(t, result["total_xp"].(float64), float64(0))
}

func TestQuizLifecycle(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerUser(t, "instructor", true)
	userToken := env.registerUser(t, "student", false)

	status, created := env.request(t, "POST", "/api/admin/quizzes", adminToken, map[string]interface{}{
		"title":      "Search Quiz",
		"difficulty": "beginner",
		"questions": []map[string]interface{}{
			{
				"type":           "multiple_choice",
				"prompt":         "Binary search complexity?",
				"options":        []string{"O(n)", "O(log n)", "O(1)"},
				"correct_option": 1,
			},
			{
				"type":           "multiple_choice",
				"prompt":         "Requires sorted input?",
				"options":        []string{"Yes", "No"},
				"correct_option": 0,
			},
			{
				"type":          "code_completion",
				"prompt":        "Complete the midpoint line",
				"code_template": "mid := lo + (hi-lo)/2",
			},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	quiz := created["quiz"].(map[string]interface{})
	quizID := int(quiz["ID"].(float64))
	assert.Equal(t, float64(40), quiz["TotalPoints"])
	assert.Equal(t, float64(24), quiz["PassingScore"])

	status, result := env.request(t, "POST", fmt.Sprintf("/api/quizzes/%d/attempts", quizID), userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	attemptID := int(result["attempt"].(map[string]interface{})["id"].(float64))

	questionIDs := make([]int, 0, 3)
	var questions []models.QuizQuestion
	require.NoError(t, env.db.Where("quiz_id = ?", quizID).Order("sequence_order ASC").Find(&questions).Error)
	for _, q := range questions {
		questionIDs = append(questionIDs, int(q.ID))
	}

	status, result = env.request(t, "POST",
		fmt.Sprintf("/api/quizzes/%d/attempts/%d/submit", quizID, attemptID), userToken,
		map[string]interface{}{
			"answers": []map[string]interface{}{
				{"question_id": questionIDs[0], "selected": 1},
				{"question_id": questionIDs[1], "selected": 1},
				{"question_id": questionIDs[2], "submitted": "mid := lo + (hi-lo)/2"},
			},
		})
	require.Equal(t, fiber.StatusOK, status)
	submitted := result["result"].(map[string]interface{})
	assert.Equal(t, float64(30), submitted["score"], "10 for the first MC + 20 for the code question")
	assert.Equal(t, float64(40), submitted["total_possible"])
	assert.Equal(t, true, submitted["passed"])

	status, result = env.request(t, "GET", fmt.Sprintf("/api/quizzes/%d/result", quizID), userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(30), result["result"].(map[string]interface{})["score"])

	status, result = env.request(t, "GET", "/api/progress/overview", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["quizzes_completed"])
}

func TestSubmitAttemptDuplicateAnswers(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerUser(t, "instructor", true)
	userToken := env.registerUser(t, "student", false)

	status, created := env.request(t, "POST", "/api/admin/quizzes", adminToken, map[string]interface{}{
		"title":      "Duplicates Quiz",
		"difficulty": "beginner",
		"questions": []map[string]interface{}{
			{
				"type":           "multiple_choice",
				"prompt":         "Stable sort?",
				"options":        []string{"Merge sort", "Quick sort"},
				"correct_option": 0,
			},
			{
				"type":           "multiple_choice",
				"prompt":         "In-place sort?",
				"options":        []string{"Merge sort", "Quick sort"},
				"correct_option": 1,
			},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	quizID := int(created["quiz"].(map[string]interface{})["ID"].(float64))

	status, result := env.request(t, "POST", fmt.Sprintf("/api/quizzes/%d/attempts", quizID), userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	attemptID := int(result["attempt"].(map[string]interface{})["id"].(float64))

	var questions []models.QuizQuestion
	require.NoError(t, env.db.Where("quiz_id = ?", quizID).Order("sequence_order ASC").Find(&questions).Error)

	// the same correct answer repeated scores once, not once per copy
	status, result = env.request(t, "POST",
		fmt.Sprintf("/api/quizzes/%d/attempts/%d/submit", quizID, attemptID), userToken,
		map[string]interface{}{
			"answers": []map[string]interface{}{
				{"question_id": int(questions[0].ID), "selected": 0},
				{"question_id": int(questions[0].ID), "selected": 0},
			},
		})
	require.Equal(t, fiber.StatusOK, status)
	submitted := result["result"].(map[string]interface{})
	assert.Equal(t, float64(10), submitted["score"])
	assert.Equal(t, false, submitted["passed"])
}

func TestCreateQuizValidation(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerUser(t, "instructor", true)

	// fewer than 2 options
	status, _ := env.request(t, "POST", "/api/admin/quizzes", adminToken, map[string]interface{}{
		"title": "Broken Quiz",
		"questions": []map[string]interface{}{
			{"type": "multiple_choice", "prompt": "?", "options": []string{"only"}, "correct_option": 0},
		},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// correct option out of range
	status, _ = env.request(t, "POST", "/api/admin/quizzes", adminToken, map[string]interface{}{
		"title": "Broken Quiz 2",
		"questions": []map[string]interface{}{
			{"type": "multiple_choice", "prompt": "?", "options": []string{"a", "b"}, "correct_option": 5},
		},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// no questions at all
	status, _ = env.request(t, "POST", "/api/admin/quizzes", adminToken, map[string]interface{}{
		"title":     "Empty Quiz",
		"questions": []map[string]interface{}{},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestPathFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerUser(t, "instructor", true)
	userToken := env.registerUser(t, "student", false)

	status, created := env.request(t, "POST", "/api/admin/paths", adminToken, map[string]interface{}{
		"Title":    "Graphs 101",
		"XPReward": 100,
		"Steps": []map[string]interface{}{
			{"Title": "BFS", "SequenceOrder": 1},
			{"Title": "DFS", "SequenceOrder": 2},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	pathID := int(created["path"].(map[string]interface{})["ID"].(float64))

	status, _ = env.request(t, "POST", fmt.Sprintf("/api/paths/%d/start", pathID), userToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, result := env.request(t, "POST", fmt.Sprintf("/api/paths/%d/progress", pathID), userToken,
		map[string]int{"current_step": 2})
	require.Equal(t, fiber.StatusOK, status)
	progress := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(100), progress["Progress"])

	status, result = env.request(t, "GET", "/api/progress/overview", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["paths_completed"])
}

func TestMonthlyBreakdownIncludesEndOfMonth(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "alice", false)

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&user).Error)

	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMoment := startOfMonth.AddDate(0, 1, 0).Add(-time.Minute)
	require.NoError(t, env.db.Create(&models.LoginHistory{UserID: user.ID, LoginTime: lastMoment}).Error)

	status, result := env.request(t, "GET", "/api/progress", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	monthly := result["monthly"].([]interface{})
	current := monthly[0].(map[string]interface{})
	freq := current["login_frequency"].(map[string]interface{})
	count, _ := freq[lastMoment.Format("2006-01-02")].(float64)
	assert.GreaterOrEqual(t, count, float64(1), "activity late on the last day of the month counts")
}
