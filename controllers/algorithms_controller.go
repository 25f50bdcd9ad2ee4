package controllers

import (
	"errors"
	"strconv"

	"algolearn/config"
	"algolearn/gamify"
	"algolearn/models"
	"algolearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AlgorithmsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *gamify.ProgressService
}

func NewAlgorithmsController(db *gorm.DB, cfg *config.Config, progress *gamify.ProgressService) *AlgorithmsController {
	return &AlgorithmsController{DB: db, Cfg: cfg, Progress: progress}
}

func (alc *AlgorithmsController) GetAlgorithms(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	category := c.Query("category")
	difficulty := c.Query("difficulty")

	query := alc.DB.Model(&models.Algorithm{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var algorithms []models.Algorithm
	query.Order("title ASC").Find(&algorithms)

	var result []fiber.Map
	for _, algorithm := range algorithms {
		var record models.AlgorithmProgress
		alc.DB.Where("user_id = ? AND algorithm_id = ?", userID, algorithm.ID).First(&record)

		result = append(result, fiber.Map{
			"id":          algorithm.ID,
			"title":       algorithm.Title,
			"description": algorithm.ShortDesc,
			"category":    algorithm.Category,
			"difficulty":  algorithm.Difficulty,
			"logo_url":    algorithm.LogoURL,
			"viewed":      record.ID != 0,
			"completed":   record.Completed,
			"is_favorite": record.IsFavorite,
		})
	}

	return c.JSON(result)
}

func (alc *AlgorithmsController) GetAlgorithmDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	algorithmID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid algorithm ID",
		})
	}

	var algorithm models.Algorithm
	if err := alc.DB.Preload("CodeSamples").First(&algorithm, algorithmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Algorithm not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var record models.AlgorithmProgress
	alc.DB.Where("user_id = ? AND algorithm_id = ?", userID, algorithmID).First(&record)

	return c.JSON(fiber.Map{
		"algorithm": fiber.Map{
			"id":               algorithm.ID,
			"title":            algorithm.Title,
			"short_desc":       algorithm.ShortDesc,
			"description":      algorithm.Description,
			"category":         algorithm.Category,
			"difficulty":       algorithm.Difficulty,
			"time_complexity":  algorithm.TimeComplexity,
			"space_complexity": algorithm.SpaceComplexity,
			"logo_url":         algorithm.LogoURL,
			"code_samples":     algorithm.CodeSamples,
		},
		"progress": record,
	})
}

// RecordView registers one view of an algorithm: the per-user view record is
// upserted, the streak advances, and first-view/explorer badges are checked.
func (alc *AlgorithmsController) RecordView(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	algorithmID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid algorithm ID",
		})
	}

	var input struct {
		Metadata datatypes.JSON `json:"metadata"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot parse JSON",
			})
		}
	}

	record, err := alc.Progress.RecordAlgorithmView(userID, uint(algorithmID), input.Metadata)
	if err != nil {
		if errors.Is(err, gamify.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Algorithm not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record view",
		})
	}

	return c.JSON(fiber.Map{
		"message": "View recorded",
		"view": fiber.Map{
			"algorithm_id": record.AlgorithmID,
			"view_count":   record.ViewCount,
			"last_viewed":  record.LastViewed,
			"completed":    record.Completed,
		},
	})
}

func (alc *AlgorithmsController) CompleteAlgorithm(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	algorithmID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid algorithm ID",
		})
	}

	record, err := alc.Progress.CompleteAlgorithm(userID, uint(algorithmID))
	if err != nil {
		if errors.Is(err, gamify.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Algorithm not viewed yet",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete algorithm",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Algorithm completed",
		"progress": fiber.Map{
			"algorithm_id": record.AlgorithmID,
			"completed":    record.Completed,
			"completed_at": record.CompletedAt,
		},
	})
}

func (alc *AlgorithmsController) UpdateNotes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	algorithmID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid algorithm ID",
		})
	}

	var input struct {
		Notes      *string `json:"notes"`
		IsFavorite *bool   `json:"is_favorite"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var record models.AlgorithmProgress
	if err := alc.DB.Where("user_id = ? AND algorithm_id = ?", userID, algorithmID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Algorithm not viewed yet",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Notes != nil {
		record.Notes = *input.Notes
	}
	if input.IsFavorite != nil {
		record.IsFavorite = *input.IsFavorite
	}

	if err := alc.DB.Save(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update notes",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Notes updated",
		"progress": record,
	})
}

func (alc *AlgorithmsController) CreateAlgorithm(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, alc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var algorithm models.Algorithm
	if err := c.BodyParser(&algorithm); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if algorithm.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	algorithm.AuthorID = userID
	if err := alc.DB.Create(&algorithm).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create algorithm",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Algorithm created",
		"algorithm": algorithm,
	})
}
