package controllers

import (
	"algolearn/config"
	"algolearn/gamify"
	"algolearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BadgesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Catalog  *gamify.Catalog
	Progress *gamify.ProgressService
}

func NewBadgesController(db *gorm.DB, cfg *config.Config, catalog *gamify.Catalog, progress *gamify.ProgressService) *BadgesController {
	return &BadgesController{DB: db, Cfg: cfg, Catalog: catalog, Progress: progress}
}

// GetCatalog lists every badge definition, with earned state for the caller.
func (bc *BadgesController) GetCatalog(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	earned := make(map[string]bool)
	for _, badge := range bc.Progress.EarnedBadges(userID) {
		earned[string(badge.BadgeType)] = true
	}

	var result []fiber.Map
	for _, def := range bc.Catalog.Definitions() {
		result = append(result, fiber.Map{
			"type":        def.Type,
			"name":        def.Name,
			"description": def.Description,
			"icon":        def.Icon,
			"xp_reward":   def.XPReward,
			"level":       def.Level,
			"earned":      earned[string(def.Type)],
		})
	}

	return c.JSON(result)
}

func (bc *BadgesController) GetEarnedBadges(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	return c.JSON(fiber.Map{
		"badges": bc.Progress.EarnedBadges(userID),
	})
}
