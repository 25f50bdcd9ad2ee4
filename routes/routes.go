package routes

import (
	"algolearn/config"
	"algolearn/controllers"
	"algolearn/gamify"
	"algolearn/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Gamification core: the badge catalog is loaded once and passed
	// explicitly to the awarder and the progress service.
	catalog := gamify.DefaultCatalog()
	awarder := gamify.NewAwarder(db, catalog)
	progressService := gamify.NewProgressService(db, awarder)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, progressService)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg, progressService)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, progressService)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)

	// Badge routes
	badgesController := controllers.NewBadgesController(db, cfg, catalog, progressService)
	app.Get("/api/badges", authMiddleware, badgesController.GetCatalog)
	app.Get("/api/badges/earned", authMiddleware, badgesController.GetEarnedBadges)

	// Algorithm routes
	algorithmsController := controllers.NewAlgorithmsController(db, cfg, progressService)
	algorithms := app.Group("/api/algorithms", authMiddleware)
	algorithms.Get("/", algorithmsController.GetAlgorithms)
	algorithms.Get("/:id", algorithmsController.GetAlgorithmDetails)
	algorithms.Post("/:id/view", algorithmsController.RecordView)
	algorithms.Post("/:id/complete", algorithmsController.CompleteAlgorithm)
	algorithms.Put("/:id/notes", algorithmsController.UpdateNotes)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(db, cfg, progressService)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/", quizzesController.GetQuizzes)
	quizzes.Get("/:id", quizzesController.GetQuizDetails)
	quizzes.Post("/:id/attempts", quizzesController.StartAttempt)
	quizzes.Post("/:id/attempts/:attemptId/submit", quizzesController.SubmitAttempt)
	quizzes.Get("/:id/result", quizzesController.GetQuizResult)

	// Learning path routes
	pathsController := controllers.NewPathsController(db, cfg, progressService)
	paths := app.Group("/api/paths", authMiddleware)
	paths.Get("/", pathsController.GetPaths)
	paths.Get("/:id", pathsController.GetPathDetails)
	paths.Post("/:id/start", pathsController.StartPath)
	paths.Post("/:id/progress", pathsController.UpdatePathProgress)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/algorithms", algorithmsController.CreateAlgorithm)
	admin.Post("/quizzes", quizzesController.CreateQuiz)
	admin.Post("/paths", pathsController.CreatePath)
}
