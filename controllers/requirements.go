package controllers

import (
	"strconv"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
)

type RequirementController struct{}

// RequirementRequest is the create/update payload
type RequirementRequest struct {
	CourseGroupID    uint   `json:"course_group_id" validate:"required"`
	SubjectID        uint   `json:"subject_id" validate:"required"`
	TeacherID        *uint  `json:"teacher_id"`
	WeeklyHours      int    `json:"weekly_hours" validate:"required"`
	RequiredRoomType string `json:"required_room_type"`
	PreferredRoomID  *uint  `json:"preferred_room_id"`
}

// validate checks field constraints and referenced rows
func (rr *RequirementRequest) validate() (int, string) {
	if rr.CourseGroupID == 0 || rr.SubjectID == 0 {
		return fiber.StatusBadRequest, "Course group and subject are required"
	}
	if rr.WeeklyHours <= 0 {
		return fiber.StatusBadRequest, "Weekly hours must be greater than 0"
	}

	var group models.CourseGroup
	if err := database.DB.First(&group, rr.CourseGroupID).Error; err != nil {
		return fiber.StatusBadRequest, "Course group not found"
	}
	var subject models.Subject
	if err := database.DB.First(&subject, rr.SubjectID).Error; err != nil {
		return fiber.StatusBadRequest, "Subject not found"
	}
	if rr.TeacherID != nil {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, *rr.TeacherID).Error; err != nil {
			return fiber.StatusBadRequest, "Teacher not found"
		}
	}
	if rr.PreferredRoomID != nil {
		var room models.Room
		if err := database.DB.First(&room, *rr.PreferredRoomID).Error; err != nil {
			return fiber.StatusBadRequest, "Preferred room not found"
		}
		// A preferred room must satisfy the declared room type
		if rr.RequiredRoomType != "" && room.Type != rr.RequiredRoomType {
			return fiber.StatusBadRequest, "Preferred room does not match the required room type"
		}
	}
	return 0, ""
}

// GetRequirements returns requirements, optionally filtered by course group
// or teacher, serialized with their display names.
func (rc *RequirementController) GetRequirements(c *fiber.Ctx) error {
	var requirements []models.Requirement

	query := database.DB.Model(&models.Requirement{}).
		Preload("CourseGroup").
		Preload("Subject").
		Preload("Teacher").
		Preload("PreferredRoom")

	if groupID := c.Query("course_group_id"); groupID != "" {
		query = query.Where("course_group_id = ?", groupID)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	if err := query.Find(&requirements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch requirements",
		})
	}

	dtos := make([]utils.RequirementDTO, 0, len(requirements))
	for _, r := range requirements {
		dtos = append(dtos, utils.ToRequirementDTO(r))
	}

	return c.JSON(fiber.Map{
		"requirements": dtos,
	})
}

// GetRequirement returns a specific requirement by ID
func (rc *RequirementController) GetRequirement(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid requirement ID",
		})
	}

	var requirement models.Requirement
	err = database.DB.
		Preload("CourseGroup").
		Preload("Subject").
		Preload("Teacher").
		Preload("PreferredRoom").
		First(&requirement, uint(id)).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Requirement not found",
		})
	}

	return c.JSON(fiber.Map{
		"requirement": utils.ToRequirementDTO(requirement),
	})
}

// CreateRequirement creates a new weekly teaching requirement
func (rc *RequirementController) CreateRequirement(c *fiber.Ctx) error {
	var req RequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if code, msg := req.validate(); code != 0 {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	var existing models.Requirement
	if err := database.DB.Where("course_group_id = ? AND subject_id = ?", req.CourseGroupID, req.SubjectID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This course group already has a requirement for this subject",
		})
	}

	requirement := models.Requirement{
		CourseGroupID:    req.CourseGroupID,
		SubjectID:        req.SubjectID,
		TeacherID:        req.TeacherID,
		WeeklyHours:      req.WeeklyHours,
		RequiredRoomType: req.RequiredRoomType,
		PreferredRoomID:  req.PreferredRoomID,
	}
	if err := database.DB.Create(&requirement).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create requirement",
		})
	}

	middleware.LogActivity(c, "CREATE", "requirements", requirement.ID, fiber.Map{
		"course_group_id": requirement.CourseGroupID,
		"subject_id":      requirement.SubjectID,
		"weekly_hours":    requirement.WeeklyHours,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Requirement created successfully",
		"requirement": requirement,
	})
}

// UpdateRequirement updates an existing requirement
func (rc *RequirementController) UpdateRequirement(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid requirement ID",
		})
	}

	var requirement models.Requirement
	if err := database.DB.First(&requirement, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Requirement not found",
		})
	}

	var req RequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if code, msg := req.validate(); code != 0 {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}

	var duplicate models.Requirement
	if err := database.DB.
		Where("course_group_id = ? AND subject_id = ? AND id <> ?", req.CourseGroupID, req.SubjectID, requirement.ID).
		First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This course group already has a requirement for this subject",
		})
	}

	requirement.CourseGroupID = req.CourseGroupID
	requirement.SubjectID = req.SubjectID
	requirement.TeacherID = req.TeacherID
	requirement.WeeklyHours = req.WeeklyHours
	requirement.RequiredRoomType = req.RequiredRoomType
	requirement.PreferredRoomID = req.PreferredRoomID

	if err := database.DB.Save(&requirement).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update requirement",
		})
	}

	middleware.LogActivity(c, "UPDATE", "requirements", requirement.ID, fiber.Map{
		"course_group_id": requirement.CourseGroupID,
		"subject_id":      requirement.SubjectID,
		"weekly_hours":    requirement.WeeklyHours,
	})

	return c.JSON(fiber.Map{
		"message":     "Requirement updated successfully",
		"requirement": requirement,
	})
}

// DeleteRequirement removes a requirement
func (rc *RequirementController) DeleteRequirement(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid requirement ID",
		})
	}

	var requirement models.Requirement
	if err := database.DB.First(&requirement, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Requirement not found",
		})
	}

	if err := database.DB.Delete(&requirement).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete requirement",
		})
	}

	middleware.LogActivity(c, "DELETE", "requirements", requirement.ID, fiber.Map{
		"course_group_id": requirement.CourseGroupID,
		"subject_id":      requirement.SubjectID,
	})

	return c.JSON(fiber.Map{"message": "Requirement deleted successfully"})
}
