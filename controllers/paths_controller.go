package controllers

import (
	"errors"
	"strconv"

	"algolearn/config"
	"algolearn/gamify"
	"algolearn/models"
	"algolearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PathsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *gamify.ProgressService
}

func NewPathsController(db *gorm.DB, cfg *config.Config, progress *gamify.ProgressService) *PathsController {
	return &PathsController{DB: db, Cfg: cfg, Progress: progress}
}

func (pc *PathsController) GetPaths(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var paths []models.LearningPath
	pc.DB.Preload("Steps").Order("title ASC").Find(&paths)

	var result []fiber.Map
	for _, path := range paths {
		var record models.PathProgress
		pc.DB.Where("user_id = ? AND path_id = ?", userID, path.ID).First(&record)

		result = append(result, fiber.Map{
			"id":           path.ID,
			"title":        path.Title,
			"description":  path.ShortDesc,
			"difficulty":   path.Difficulty,
			"logo_url":     path.LogoURL,
			"steps":        len(path.Steps),
			"started":      record.ID != 0,
			"progress":     record.Progress,
			"current_step": record.CurrentStep,
			"completed":    record.CompletedAt != nil,
		})
	}

	return c.JSON(result)
}

func (pc *PathsController) GetPathDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid path ID",
		})
	}

	var path models.LearningPath
	if err := pc.DB.Preload("Steps").First(&path, pathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Path not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var record models.PathProgress
	pc.DB.Where("user_id = ? AND path_id = ?", userID, pathID).First(&record)

	return c.JSON(fiber.Map{
		"path": fiber.Map{
			"id":          path.ID,
			"title":       path.Title,
			"short_desc":  path.ShortDesc,
			"description": path.Description,
			"difficulty":  path.Difficulty,
			"logo_url":    path.LogoURL,
			"xp_reward":   path.XPReward,
			"steps":       path.Steps,
		},
		"progress": record,
	})
}

func (pc *PathsController) StartPath(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid path ID",
		})
	}

	record, err := pc.Progress.StartPath(userID, uint(pathID))
	if err != nil {
		if errors.Is(err, gamify.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Path not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not start path",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Path started",
		"progress": record,
	})
}

func (pc *PathsController) UpdatePathProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid path ID",
		})
	}

	var input struct {
		CurrentStep int `json:"current_step"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	record, err := pc.Progress.AdvancePath(userID, uint(pathID), input.CurrentStep)
	if err != nil {
		switch {
		case errors.Is(err, gamify.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Path not started",
			})
		case errors.Is(err, gamify.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update progress",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message":  "Progress updated",
		"progress": record,
	})
}

func (pc *PathsController) CreatePath(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var path models.LearningPath
	if err := c.BodyParser(&path); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if path.Title == "" || len(path.Steps) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and at least one step are required",
		})
	}

	path.AuthorID = userID
	if err := pc.DB.Create(&path).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create path",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Path created",
		"path":    path,
	})
}
