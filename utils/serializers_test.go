package utils

import (
	"testing"

	"horarios_go/models"
)

func teacherIDPtr(v uint) *uint { return &v }

func TestToRequirementDTO(t *testing.T) {
	req := models.Requirement{
		BaseModel:     models.BaseModel{ID: 7},
		CourseGroupID: 1,
		SubjectID:     2,
		TeacherID:     teacherIDPtr(3),
		WeeklyHours:   4,
		CourseGroup:   models.CourseGroup{Year: "1°", Division: "A"},
		Subject:       models.Subject{BaseModel: models.BaseModel{ID: 2}, Name: "Matemática", ColorHex: "#ff0000"},
		Teacher:       &models.Teacher{BaseModel: models.BaseModel{ID: 3}, Name: "Ana García"},
		PreferredRoom: &models.Room{Name: "Laboratorio 1"},
	}

	dto := ToRequirementDTO(req)
	if dto.ID != 7 || dto.SubjectName != "Matemática" || dto.TeacherName != "Ana García" {
		t.Fatalf("unexpected DTO %+v", dto)
	}
	if dto.GroupYear != "1°" || dto.GroupDivision != "A" {
		t.Fatalf("group fields not mapped: %+v", dto)
	}
	if dto.PreferredRoom != "Laboratorio 1" {
		t.Fatalf("preferred room not mapped: %+v", dto)
	}
}

func TestToRequirementDTOWithoutTeacher(t *testing.T) {
	dto := ToRequirementDTO(models.Requirement{
		Subject: models.Subject{Name: "Música"},
	})
	if dto.TeacherName != "Sin asignar" {
		t.Fatalf("expected placeholder teacher name, got %q", dto.TeacherName)
	}
	if dto.PreferredRoom != "" {
		t.Fatalf("expected empty preferred room, got %q", dto.PreferredRoom)
	}
}

func TestToGridCellPlaceholders(t *testing.T) {
	cell := ToGridCell(models.Assignment{
		BaseModel:   models.BaseModel{ID: 9},
		Subject:     models.Subject{Name: "Historia"},
		CourseGroup: models.CourseGroup{Year: "2°", Division: "B"},
	})
	if cell.TeacherName != "Sin profesor" {
		t.Fatalf("expected teacher placeholder, got %q", cell.TeacherName)
	}
	if cell.RoomName != "Sin aula" {
		t.Fatalf("expected room placeholder, got %q", cell.RoomName)
	}
	if cell.SubjectColor != "#0d9488" {
		t.Fatalf("expected default color, got %q", cell.SubjectColor)
	}
	if cell.GroupName != "2° B" {
		t.Fatalf("expected group display name, got %q", cell.GroupName)
	}
}

func TestBuildGrid(t *testing.T) {
	assignments := []models.Assignment{
		{
			BaseModel:   models.BaseModel{ID: 1},
			Day:         "Lunes",
			StartTime:   "07:40",
			PeriodLabel: "07:40 a 08:20",
			Subject:     models.Subject{Name: "Matemática"},
			Teacher:     &models.Teacher{Name: "Ana García"},
			Room:        &models.Room{Name: "Aula 1"},
		},
		{
			BaseModel:   models.BaseModel{ID: 2},
			Day:         "Martes",
			StartTime:   "07:40",
			PeriodLabel: "07:40 a 08:20",
			Subject:     models.Subject{Name: "Lengua"},
		},
		{
			BaseModel:   models.BaseModel{ID: 3},
			Day:         "Lunes",
			StartTime:   "08:20",
			PeriodLabel: "08:20 a 09:00",
			Subject:     models.Subject{Name: "Historia"},
		},
	}

	grid := BuildGrid(assignments)
	if len(grid) != 2 {
		t.Fatalf("expected 2 period rows, got %d", len(grid))
	}
	row := grid["07:40 a 08:20"]
	if len(row) != 2 {
		t.Fatalf("expected 2 cells in the first row, got %d", len(row))
	}
	cell := row["Lunes"]
	if cell.AssignmentID != 1 || cell.SubjectName != "Matemática" || cell.TeacherName != "Ana García" || cell.RoomName != "Aula 1" {
		t.Fatalf("unexpected cell %+v", cell)
	}
	if grid["08:20 a 09:00"]["Lunes"].SubjectName != "Historia" {
		t.Fatalf("second row not indexed by its period label")
	}
}
