package controllers

import (
	"encoding/json"
	"strconv"
	"strings"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/services/scheduler"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TeacherController struct{}

// TeacherRequest is the create/update payload. Availability is the list of
// "Day-HH:MM" tokens the teacher can take; an empty list means unrestricted.
type TeacherRequest struct {
	Name         string   `json:"name" validate:"required"`
	DocumentID   string   `json:"document_id"`
	Color        string   `json:"color"`
	Availability []string `json:"availability"`
	CreateUser   bool     `json:"create_user"`
}

func (tr *TeacherRequest) validate() string {
	tr.Name = utils.SanitizeString(tr.Name)
	if tr.Name == "" {
		return "Teacher name is required"
	}
	for _, token := range tr.Availability {
		day, start, ok := splitToken(token)
		if !ok || !scheduler.ValidSlot(day, start) {
			return "Invalid availability slot: " + token
		}
	}
	return ""
}

func splitToken(token string) (day, start string, ok bool) {
	i := strings.LastIndex(token, "-")
	if i <= 0 || i == len(token)-1 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}

// GetTeachers returns all teachers with pagination
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset := (page - 1) * limit

	var teachers []models.Teacher
	var total int64

	query := database.DB.Model(&models.Teacher{})

	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Order("name").Offset(offset).Limit(limit).Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch teachers",
		})
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetTeacher returns a specific teacher by ID
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.Preload("User").First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	return c.JSON(fiber.Map{
		"teacher": teacher,
	})
}

// CreateTeacher creates a new teacher, optionally provisioning a login with
// the default password so the teacher is forced to pick their own.
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var existing models.Teacher
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A teacher with this name already exists",
		})
	}

	availability, _ := json.Marshal(req.Availability)

	teacher := models.Teacher{
		Name:         req.Name,
		DocumentID:   req.DocumentID,
		Color:        req.Color,
		Availability: availability,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.CreateUser {
			user, err := provisionTeacherUser(tx, req.Name)
			if err != nil {
				return err
			}
			teacher.UserID = &user.ID
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create teacher",
		})
	}

	middleware.LogActivity(c, "CREATE", "teachers", teacher.ID, fiber.Map{
		"name": teacher.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Teacher created successfully",
		"teacher": teacher,
	})
}

// provisionTeacherUser creates a login for the teacher on the default
// password with a forced change at first login.
func provisionTeacherUser(tx *gorm.DB, name string) (*models.User, error) {
	username := strings.ToLower(strings.ReplaceAll(utils.SanitizeString(name), " ", "."))

	// Make the username unique if the natural one is taken
	candidate := username
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		candidate = username + strconv.Itoa(i)
	}

	hashed, err := utils.HashPassword(utils.DefaultTeacherPassword)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:            candidate,
		Password:            hashed,
		Role:                "teacher",
		Active:              true,
		ForceChangePassword: true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTeacher updates an existing teacher
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var duplicate models.Teacher
	if err := database.DB.Where("name = ? AND id <> ?", req.Name, teacher.ID).First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A teacher with this name already exists",
		})
	}

	availability, _ := json.Marshal(req.Availability)

	teacher.Name = req.Name
	teacher.DocumentID = req.DocumentID
	if req.Color != "" {
		teacher.Color = req.Color
	}
	teacher.Availability = availability

	if err := database.DB.Save(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update teacher",
		})
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, fiber.Map{
		"name": teacher.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
		"teacher": teacher,
	})
}

// DeleteTeacher removes a teacher. Requirements referencing the teacher are
// detached rather than deleted so the obligation stays visible as
// unassigned.
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid teacher ID",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Teacher not found",
		})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Requirement{}).
			Where("teacher_id = ?", teacher.ID).
			Update("teacher_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Assignment{}).
			Where("teacher_id = ?", teacher.ID).
			Update("teacher_id", nil).Error; err != nil {
			return err
		}
		if teacher.UserID != nil {
			if err := tx.Model(&models.User{}).
				Where("id = ?", *teacher.UserID).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete teacher",
		})
	}

	middleware.LogActivity(c, "DELETE", "teachers", teacher.ID, fiber.Map{
		"name": teacher.Name,
	})

	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}
