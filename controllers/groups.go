package controllers

import (
	"strconv"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CourseGroupController struct{}

// CourseGroupRequest is the create/update payload
type CourseGroupRequest struct {
	Year         string `json:"year" validate:"required"`
	Division     string `json:"division" validate:"required"`
	StudentCount int    `json:"student_count"`
}

func (gr *CourseGroupRequest) validate() string {
	gr.Year = utils.SanitizeString(gr.Year)
	gr.Division = utils.SanitizeString(gr.Division)
	if gr.Year == "" || gr.Division == "" {
		return "Year and division are required"
	}
	if gr.StudentCount <= 0 {
		return "Student count must be greater than 0"
	}
	return ""
}

// GetCourseGroups returns all course groups
func (gc *CourseGroupController) GetCourseGroups(c *fiber.Ctx) error {
	var groups []models.CourseGroup

	if err := database.DB.Order("year, division").Find(&groups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch course groups",
		})
	}

	type groupView struct {
		models.CourseGroup
		DisplayName string `json:"display_name"`
	}
	views := make([]groupView, 0, len(groups))
	for i := range groups {
		views = append(views, groupView{CourseGroup: groups[i], DisplayName: groups[i].DisplayName()})
	}

	return c.JSON(fiber.Map{
		"course_groups": views,
	})
}

// GetCourseGroup returns a specific course group by ID
func (gc *CourseGroupController) GetCourseGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course group ID",
		})
	}

	var group models.CourseGroup
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course group not found",
		})
	}

	return c.JSON(fiber.Map{
		"course_group": group,
		"display_name": group.DisplayName(),
	})
}

// CreateCourseGroup creates a new course group
func (gc *CourseGroupController) CreateCourseGroup(c *fiber.Ctx) error {
	var req CourseGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var existing models.CourseGroup
	if err := database.DB.Where("year = ? AND division = ?", req.Year, req.Division).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This course group already exists",
		})
	}

	group := models.CourseGroup{
		Year:         req.Year,
		Division:     req.Division,
		StudentCount: req.StudentCount,
	}
	if err := database.DB.Create(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create course group",
		})
	}

	middleware.LogActivity(c, "CREATE", "course_groups", group.ID, fiber.Map{
		"name": group.DisplayName(),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Course group created successfully",
		"course_group": group,
	})
}

// UpdateCourseGroup updates an existing course group
func (gc *CourseGroupController) UpdateCourseGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course group ID",
		})
	}

	var group models.CourseGroup
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course group not found",
		})
	}

	var req CourseGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var duplicate models.CourseGroup
	if err := database.DB.Where("year = ? AND division = ? AND id <> ?", req.Year, req.Division, group.ID).
		First(&duplicate).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This course group already exists",
		})
	}

	group.Year = req.Year
	group.Division = req.Division
	group.StudentCount = req.StudentCount

	if err := database.DB.Save(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update course group",
		})
	}

	middleware.LogActivity(c, "UPDATE", "course_groups", group.ID, fiber.Map{
		"name": group.DisplayName(),
	})

	return c.JSON(fiber.Map{
		"message":      "Course group updated successfully",
		"course_group": group,
	})
}

// DeleteCourseGroup removes a course group together with its requirements
// and committed sessions.
func (gc *CourseGroupController) DeleteCourseGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course group ID",
		})
	}

	var group models.CourseGroup
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course group not found",
		})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_group_id = ?", group.ID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_group_id = ?", group.ID).Delete(&models.Requirement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete course group",
		})
	}

	middleware.LogActivity(c, "DELETE", "course_groups", group.ID, fiber.Map{
		"name": group.DisplayName(),
	})

	return c.JSON(fiber.Map{"message": "Course group deleted successfully"})
}
