package controllers

import (
	"errors"

	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/services"

	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	settings *services.SettingsService
}

func NewSettingsController() *SettingsController {
	return &SettingsController{settings: services.NewSettingsService()}
}

// InstitutionRequest is the institution identity payload
type InstitutionRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

// GetTimetablePreferences returns the stored generation preferences
func (sc *SettingsController) GetTimetablePreferences(c *fiber.Ctx) error {
	prefs, err := sc.settings.GetTimetablePreferences()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load preferences",
		})
	}

	return c.JSON(fiber.Map{
		"preferences": prefs,
	})
}

// UpdateTimetablePreferences stores the lunch/avoid slots used by generation
func (sc *SettingsController) UpdateTimetablePreferences(c *fiber.Ctx) error {
	var prefs models.TimetablePreferences
	if err := c.BodyParser(&prefs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := sc.settings.UpdateTimetablePreferences(prefs); err != nil {
		if errors.Is(err, services.ErrSettingsValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save preferences",
		})
	}

	middleware.LogActivity(c, "UPDATE", "settings", 0, fiber.Map{
		"key": models.SettingTimetablePreferences,
	})

	return c.JSON(fiber.Map{
		"message":     "Preferences updated",
		"preferences": prefs,
	})
}

// GetInstitution returns the institution identity block
func (sc *SettingsController) GetInstitution(c *fiber.Ctx) error {
	info, err := sc.settings.GetInstitutionInfo()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load institution info",
		})
	}

	return c.JSON(fiber.Map{
		"institution": info,
	})
}

// UpdateInstitution stores the institution name and address
func (sc *SettingsController) UpdateInstitution(c *fiber.Ctx) error {
	var req InstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := sc.settings.UpdateInstitutionInfo(req.Name, req.Address); err != nil {
		if errors.Is(err, services.ErrSettingsValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save institution info",
		})
	}

	middleware.LogActivity(c, "UPDATE", "settings", 0, fiber.Map{
		"key": models.SettingInstitutionName,
	})

	return c.JSON(fiber.Map{"message": "Institution info updated"})
}

// UploadLogo replaces the institution logo
func (sc *SettingsController) UploadLogo(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Logo file is required",
		})
	}

	url, err := sc.settings.UploadInstitutionLogo(file, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrSettingsValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload logo",
		})
	}

	middleware.LogActivity(c, "UPDATE", "settings", 0, fiber.Map{
		"key": models.SettingInstitutionLogo,
	})

	return c.JSON(fiber.Map{
		"message":  "Logo uploaded",
		"logo_url": url,
	})
}
