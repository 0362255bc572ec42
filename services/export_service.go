package services

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"horarios_go/database"
	"horarios_go/models"
	"horarios_go/services/scheduler"

	"github.com/xuri/excelize/v2"
)

var ErrExportEmpty = errors.New("no assignments to export")

// ExportService renders the committed timetable as an .xlsx workbook with
// one sheet per course group.
type ExportService struct {
	settings *SettingsService
}

func NewExportService() *ExportService {
	return &ExportService{settings: NewSettingsService()}
}

const (
	exportHourColWidth = 16
	exportDayColWidth  = 26
)

// ExportTimetable builds the workbook and returns it with a suggested
// filename. Rows cover every teaching period of the day; cells hold
// "Subject\nTeacher\nRoom" for the session occupying that slot.
func (s *ExportService) ExportTimetable() (*bytes.Buffer, string, error) {
	var groups []models.CourseGroup
	if err := database.DB.Order("year, division").Find(&groups).Error; err != nil {
		return nil, "", err
	}

	var assignments []models.Assignment
	err := database.DB.
		Preload("Subject").
		Preload("Teacher").
		Preload("Room").
		Find(&assignments).Error
	if err != nil {
		return nil, "", err
	}
	if len(assignments) == 0 {
		return nil, "", ErrExportEmpty
	}

	// (groupID, day, start) → assignment
	index := make(map[string]*models.Assignment, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		index[fmt.Sprintf("%d|%s|%s", a.CourseGroupID, a.Day, a.StartTime)] = a
	}

	institution, err := s.settings.GetInstitutionInfo()
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0D9488"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	hourStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	for gi := range groups {
		group := &groups[gi]
		sheet := group.DisplayName()
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", err
		}

		f.SetColWidth(sheet, "A", "A", exportHourColWidth)
		lastCol, _ := excelize.ColumnNumberToName(1 + len(scheduler.Weekdays))
		f.SetColWidth(sheet, "B", lastCol, exportDayColWidth)

		row := 1
		if institution.Name != "" {
			f.SetCellValue(sheet, "A1", institution.Name)
			f.MergeCell(sheet, "A1", fmt.Sprintf("%s1", lastCol))
			f.SetCellStyle(sheet, "A1", "A1", headerStyle)
			row = 2
		}

		headerRow := row
		f.SetCellValue(sheet, cellRef(1, headerRow), "Hora")
		for di, day := range scheduler.Weekdays {
			f.SetCellValue(sheet, cellRef(2+di, headerRow), day)
		}
		f.SetCellStyle(sheet, cellRef(1, headerRow), cellRef(1+len(scheduler.Weekdays), headerRow), headerStyle)

		for pi, start := range scheduler.Periods {
			r := headerRow + 1 + pi
			label, err := scheduler.PeriodRange(start)
			if err != nil {
				return nil, "", err
			}
			f.SetCellValue(sheet, cellRef(1, r), label)
			f.SetCellStyle(sheet, cellRef(1, r), cellRef(1, r), hourStyle)
			f.SetRowHeight(sheet, r, 42)

			for di, day := range scheduler.Weekdays {
				ref := cellRef(2+di, r)
				f.SetCellStyle(sheet, ref, ref, cellStyle)
				a, ok := index[fmt.Sprintf("%d|%s|%s", group.ID, day, start)]
				if !ok {
					continue
				}
				f.SetCellValue(sheet, ref, assignmentCellText(a))
			}
		}
	}

	// Drop the default sheet once real ones exist.
	if len(groups) > 0 {
		f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("horarios_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

func assignmentCellText(a *models.Assignment) string {
	text := a.Subject.Name
	if a.Teacher != nil {
		text += "\n" + a.Teacher.Name
	}
	if a.Room != nil {
		text += "\n" + a.Room.Name
	}
	return text
}

func cellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}
