package controllers

import (
	"strconv"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
)

type SubjectController struct{}

// GetSubjects returns all subjects
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject

	query := database.DB.Model(&models.Subject{})
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Order("name").Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch subjects",
		})
	}

	return c.JSON(fiber.Map{
		"subjects": subjects,
	})
}

// GetSubject returns a specific subject by ID
func (sc *SubjectController) GetSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subject not found",
		})
	}

	return c.JSON(fiber.Map{
		"subject": subject,
	})
}

// CreateSubject creates a new subject
func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := c.BodyParser(&subject); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	subject.Name = utils.SanitizeString(subject.Name)
	if subject.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject name is required",
		})
	}

	var existing models.Subject
	if err := database.DB.Where("name = ?", subject.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A subject with this name already exists",
		})
	}

	if err := database.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create subject",
		})
	}

	middleware.LogActivity(c, "CREATE", "subjects", subject.ID, fiber.Map{
		"name": subject.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subject created successfully",
		"subject": subject,
	})
}

// UpdateSubject updates an existing subject
func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subject not found",
		})
	}

	var req models.Subject
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Name = utils.SanitizeString(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject name is required",
		})
	}

	var duplicate models.Subject
	if err := database.DB.Where("name = ? AND id <> ?", req.Name, subject.ID).First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A subject with this name already exists",
		})
	}

	subject.Name = req.Name
	if req.ColorHex != "" {
		subject.ColorHex = req.ColorHex
	}

	if err := database.DB.Save(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update subject",
		})
	}

	middleware.LogActivity(c, "UPDATE", "subjects", subject.ID, fiber.Map{
		"name": subject.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Subject updated successfully",
		"subject": subject,
	})
}

// DeleteSubject removes a subject unless requirements still reference it
func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subject not found",
		})
	}

	var inUse int64
	database.DB.Model(&models.Requirement{}).Where("subject_id = ?", subject.ID).Count(&inUse)
	if inUse > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Subject is referenced by requirements and cannot be deleted",
		})
	}

	if err := database.DB.Delete(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete subject",
		})
	}

	middleware.LogActivity(c, "DELETE", "subjects", subject.ID, fiber.Map{
		"name": subject.Name,
	})

	return c.JSON(fiber.Map{"message": "Subject deleted successfully"})
}
