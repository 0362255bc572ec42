package utils

import (
	"horarios_go/models"
)

// Compact representations used across APIs

// RequirementDTO flattens a requirement with the names the admin UI shows.
type RequirementDTO struct {
	ID               uint   `json:"id"`
	CourseGroupID    uint   `json:"course_group_id"`
	GroupYear        string `json:"group_year"`
	GroupDivision    string `json:"group_division"`
	SubjectID        uint   `json:"subject_id"`
	SubjectName      string `json:"subject_name"`
	SubjectColor     string `json:"subject_color"`
	TeacherID        *uint  `json:"teacher_id"`
	TeacherName      string `json:"teacher_name"`
	WeeklyHours      int    `json:"weekly_hours"`
	RequiredRoomType string `json:"required_room_type,omitempty"`
	PreferredRoom    string `json:"preferred_room,omitempty"`
}

// ToRequirementDTO maps a models.Requirement to the compact DTO.
// Assumes the caller preloaded CourseGroup, Subject, Teacher and PreferredRoom.
func ToRequirementDTO(r models.Requirement) RequirementDTO {
	dto := RequirementDTO{
		ID:               r.ID,
		CourseGroupID:    r.CourseGroupID,
		GroupYear:        r.CourseGroup.Year,
		GroupDivision:    r.CourseGroup.Division,
		SubjectID:        r.SubjectID,
		SubjectName:      r.Subject.Name,
		SubjectColor:     r.Subject.ColorHex,
		TeacherID:        r.TeacherID,
		TeacherName:      "Sin asignar",
		WeeklyHours:      r.WeeklyHours,
		RequiredRoomType: r.RequiredRoomType,
	}
	if r.Teacher != nil {
		dto.TeacherName = r.Teacher.Name
	}
	if r.PreferredRoom != nil {
		dto.PreferredRoom = r.PreferredRoom.Name
	}
	return dto
}

// GridCell is one entry in a period×day timetable grid.
type GridCell struct {
	AssignmentID uint   `json:"assignment_id"`
	SubjectName  string `json:"subject_name"`
	SubjectColor string `json:"subject_color"`
	TeacherName  string `json:"teacher_name"`
	GroupName    string `json:"group_name"`
	RoomName     string `json:"room_name"`
}

// ToGridCell maps an assignment to a grid cell. Assumes Subject, Teacher,
// CourseGroup and Room were preloaded; missing relations degrade to
// placeholder labels rather than nil dereferences.
func ToGridCell(a models.Assignment) GridCell {
	cell := GridCell{
		AssignmentID: a.ID,
		SubjectName:  a.Subject.Name,
		SubjectColor: a.Subject.ColorHex,
		TeacherName:  "Sin profesor",
		GroupName:    a.CourseGroup.DisplayName(),
		RoomName:     "Sin aula",
	}
	if cell.SubjectColor == "" {
		cell.SubjectColor = "#0d9488"
	}
	if a.Teacher != nil {
		cell.TeacherName = a.Teacher.Name
	}
	if a.Room != nil {
		cell.RoomName = a.Room.Name
	}
	return cell
}

// BuildGrid indexes assignments as period-label → day → cell, the shape the
// frontend grid and the workbook rows consume.
func BuildGrid(assignments []models.Assignment) map[string]map[string]GridCell {
	grid := make(map[string]map[string]GridCell)
	for _, a := range assignments {
		row, ok := grid[a.PeriodLabel]
		if !ok {
			row = make(map[string]GridCell)
			grid[a.PeriodLabel] = row
		}
		row[a.Day] = ToGridCell(a)
	}
	return grid
}
