package controllers

import (
	"errors"
	"strconv"

	"horarios_go/database"
	"horarios_go/middleware"
	"horarios_go/models"
	"horarios_go/services"
	"horarios_go/services/scheduler"
	"horarios_go/utils"

	"github.com/gofiber/fiber/v2"
)

type TimetableController struct {
	timetable *services.TimetableService
	export    *services.ExportService
	archive   *services.ArchiveService
}

func NewTimetableController(timetable *services.TimetableService, archive *services.ArchiveService) *TimetableController {
	return &TimetableController{
		timetable: timetable,
		export:    services.NewExportService(),
		archive:   archive,
	}
}

// MoveRequest is the relocation payload
type MoveRequest struct {
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
}

// GenerateAll rebuilds the timetable for every course group
func (tc *TimetableController) GenerateAll(c *fiber.Ctx) error {
	summaries, err := tc.timetable.GenerateAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate timetable",
		})
	}

	middleware.LogActivity(c, "GENERATE", "timetable", 0, fiber.Map{
		"groups": len(summaries),
	})

	return c.JSON(fiber.Map{
		"message":   "Timetable generated",
		"summaries": summaries,
	})
}

// GenerateForGroup rebuilds one course group's timetable
func (tc *TimetableController) GenerateForGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course group ID",
		})
	}

	summary, err := tc.timetable.GenerateForGroup(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseGroupNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course group not found",
			})
		case errors.Is(err, services.ErrNoRequirements):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Course group has no requirements to schedule",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate timetable",
			})
		}
	}

	middleware.LogActivity(c, "GENERATE", "timetable", uint(id), fiber.Map{
		"assigned": summary.Assigned,
		"complete": summary.Complete,
	})

	return c.JSON(fiber.Map{
		"message": "Timetable generated",
		"summary": summary,
	})
}

// MoveAssignment relocates one session, swapping with the occupant of the
// destination slot when both moves validate.
func (tc *TimetableController) MoveAssignment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assignment ID",
		})
	}

	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := tc.timetable.MoveAssignment(uint(id), req.Day, req.StartTime)
	if err != nil {
		var conflict *scheduler.ConflictError
		switch {
		case errors.As(err, &conflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": conflict.Error(),
			})
		case errors.Is(err, scheduler.ErrInvalidSlot):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid day or start time",
			})
		case errors.Is(err, scheduler.ErrAssignmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assignment not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to move assignment",
			})
		}
	}

	middleware.LogActivity(c, "MOVE", "assignments", uint(id), fiber.Map{
		"day":        req.Day,
		"start_time": req.StartTime,
		"swapped":    result.Swapped,
	})

	return c.JSON(fiber.Map{
		"message": "Assignment moved",
		"result":  result,
	})
}

// GetGroupTimetable returns one course group's grid keyed by period label
// and day.
func (tc *TimetableController) GetGroupTimetable(c *fiber.Ctx) error {
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

	var assignments []models.Assignment
	err = database.DB.
		Preload("Subject").
		Preload("Teacher").
		Preload("Room").
		Where("course_group_id = ?", group.ID).
		Find(&assignments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch timetable",
		})
	}

	return c.JSON(fiber.Map{
		"course_group": group,
		"display_name": group.DisplayName(),
		"grid":         utils.BuildGrid(assignments),
	})
}

// GetTeacherTimetable returns one teacher's grid across all groups
func (tc *TimetableController) GetTeacherTimetable(c *fiber.Ctx) error {
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

	return tc.teacherGrid(c, &teacher)
}

// GetMyTimetable returns the grid of the teacher bound to the calling user
func (tc *TimetableController) GetMyTimetable(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	var teacher models.Teacher
	if err := database.DB.Where("user_id = ?", user.ID).First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No teacher record linked to this account",
		})
	}

	return tc.teacherGrid(c, &teacher)
}

func (tc *TimetableController) teacherGrid(c *fiber.Ctx, teacher *models.Teacher) error {
	var assignments []models.Assignment
	err := database.DB.
		Preload("Subject").
		Preload("CourseGroup").
		Preload("Room").
		Where("teacher_id = ?", teacher.ID).
		Find(&assignments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch timetable",
		})
	}

	return c.JSON(fiber.Map{
		"teacher": teacher,
		"grid":    utils.BuildGrid(assignments),
	})
}

// FindSubstitutes lists teachers able to cover a given slot
func (tc *TimetableController) FindSubstitutes(c *fiber.Ctx) error {
	day := c.Query("day")
	start := c.Query("start_time")

	candidates, err := tc.timetable.FindSubstitutes(day, start)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidSlot) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid day or start time",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search substitutes",
		})
	}

	return c.JSON(fiber.Map{
		"day":        day,
		"start_time": start,
		"candidates": candidates,
	})
}

// GetWorkloadReport compares required and assigned weekly hours per teacher
func (tc *TimetableController) GetWorkloadReport(c *fiber.Ctx) error {
	report, err := tc.timetable.WorkloadReport()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build workload report",
		})
	}

	return c.JSON(fiber.Map{
		"workload": report,
	})
}

// ResetTimetable discards every committed session
func (tc *TimetableController) ResetTimetable(c *fiber.Ctx) error {
	if err := tc.timetable.ResetTimetable(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset timetable",
		})
	}

	middleware.LogActivity(c, "RESET", "timetable", 0, nil)

	return c.JSON(fiber.Map{"message": "Timetable reset"})
}

// ExportTimetable streams the timetable workbook as an .xlsx download
func (tc *TimetableController) ExportTimetable(c *fiber.Ctx) error {
	buf, filename, err := tc.export.ExportTimetable()
	if err != nil {
		if errors.Is(err, services.ErrExportEmpty) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No assignments to export",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export timetable",
		})
	}

	middleware.LogActivity(c, "EXPORT", "timetable", 0, fiber.Map{"file": filename})

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(buf.Bytes())
}

// ListSnapshots returns the recorded S3 timetable snapshots
func (tc *TimetableController) ListSnapshots(c *fiber.Ctx) error {
	archives, err := tc.archive.ListSnapshots()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list snapshots",
		})
	}

	return c.JSON(fiber.Map{
		"snapshots": archives,
	})
}

// TriggerSnapshot uploads an on-demand snapshot to S3
func (tc *TimetableController) TriggerSnapshot(c *fiber.Ctx) error {
	archive, err := tc.archive.SnapshotTimetable()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create snapshot",
		})
	}
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No assignments to snapshot",
		})
	}

	middleware.LogActivity(c, "SNAPSHOT", "timetable", archive.ID, fiber.Map{
		"s3_key": archive.S3Key,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Snapshot created",
		"snapshot": archive,
	})
}

// DownloadSnapshot streams one stored snapshot back from S3
func (tc *TimetableController) DownloadSnapshot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid snapshot ID",
		})
	}

	reader, filename, err := tc.archive.DownloadSnapshot(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrArchiveNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Snapshot not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to download snapshot",
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.SendStream(reader)
}
