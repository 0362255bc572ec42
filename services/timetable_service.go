package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"horarios_go/database"
	"horarios_go/models"
	"horarios_go/services/scheduler"
	"horarios_go/services/websocket"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrCourseGroupNotFound = errors.New("course group not found")
	ErrNoRequirements      = errors.New("course group has no requirements")
)

// GenerationSummary reports one generation run for one course group.
type GenerationSummary struct {
	CourseGroupID uint                `json:"course_group_id"`
	GroupName     string              `json:"group_name"`
	Assigned      int                 `json:"assigned"`
	Deficits      []scheduler.Deficit `json:"deficits"`
	Complete      bool                `json:"complete"`
}

// MoveResult reports a committed relocation: the moved session and, for a
// swap, the displaced one.
type MoveResult struct {
	Moved    *models.Assignment `json:"moved"`
	Occupant *models.Assignment `json:"occupant,omitempty"`
	Swapped  bool               `json:"swapped"`
}

// SubstituteCandidate is a teacher free and explicitly available at a slot.
type SubstituteCandidate struct {
	TeacherID uint   `json:"teacher_id"`
	Name      string `json:"name"`
}

// TeacherWorkload compares a teacher's contracted weekly hours against what
// the current timetable actually assigns them.
type TeacherWorkload struct {
	TeacherID     uint   `json:"teacher_id"`
	Name          string `json:"name"`
	RequiredHours int    `json:"required_hours"`
	AssignedHours int    `json:"assigned_hours"`
}

// TimetableService owns every operation that reads or mutates the committed
// timetable. A single mutex serializes generation and relocation so two
// concurrent runs can never interleave their occupancy views.
type TimetableService struct {
	mu       sync.Mutex
	hub      *websocket.Hub
	settings *SettingsService
}

func NewTimetableService(hub *websocket.Hub) *TimetableService {
	return &TimetableService{
		hub:      hub,
		settings: NewSettingsService(),
	}
}

// solverWorld is the shared solver input loaded once per run.
type solverWorld struct {
	teachers []scheduler.TeacherRecord
	rooms    []scheduler.RoomRecord
	groups   []scheduler.GroupRecord
	avoid    []string
}

func (s *TimetableService) loadWorld() (*solverWorld, error) {
	var teachers []models.Teacher
	if err := database.DB.Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("failed to load teachers: %w", err)
	}

	var rooms []models.Room
	if err := database.DB.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	var groups []models.CourseGroup
	if err := database.DB.Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load course groups: %w", err)
	}

	prefs, err := s.settings.GetTimetablePreferences()
	if err != nil {
		return nil, err
	}

	world := &solverWorld{avoid: prefs.LunchSlots}
	for _, t := range teachers {
		world.teachers = append(world.teachers, scheduler.TeacherRecord{
			ID:           t.ID,
			Name:         t.Name,
			Availability: []byte(t.Availability),
		})
	}
	for _, r := range rooms {
		world.rooms = append(world.rooms, scheduler.RoomRecord{
			ID:       r.ID,
			Name:     r.Name,
			Type:     r.Type,
			Capacity: r.Capacity,
		})
	}
	for _, g := range groups {
		world.groups = append(world.groups, scheduler.GroupRecord{
			ID:   g.ID,
			Size: g.StudentCount,
		})
	}
	return world, nil
}

func toSolverRequirements(reqs []models.Requirement) []scheduler.Requirement {
	out := make([]scheduler.Requirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, scheduler.Requirement{
			ID:              r.ID,
			GroupID:         r.CourseGroupID,
			SubjectID:       r.SubjectID,
			TeacherID:       r.TeacherID,
			WeeklyHours:     r.WeeklyHours,
			RoomType:        r.RequiredRoomType,
			PreferredRoomID: r.PreferredRoomID,
		})
	}
	return out
}

func toSeed(assignments []models.Assignment) []scheduler.Assignment {
	out := make([]scheduler.Assignment, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, scheduler.Assignment{
			ID:        a.ID,
			Day:       a.Day,
			Start:     a.StartTime,
			GroupID:   a.CourseGroupID,
			SubjectID: a.SubjectID,
			TeacherID: a.TeacherID,
			RoomID:    a.RoomID,
		})
	}
	return out
}

// toModels converts solver output to persistable rows, deriving the
// denormalized period label.
func toModels(placed []scheduler.Assignment) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0, len(placed))
	for _, a := range placed {
		label, err := scheduler.PeriodRange(a.Start)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Assignment{
			Day:           a.Day,
			StartTime:     a.Start,
			PeriodLabel:   label,
			CourseGroupID: a.GroupID,
			SubjectID:     a.SubjectID,
			TeacherID:     a.TeacherID,
			RoomID:        a.RoomID,
		})
	}
	return out, nil
}

// GenerateForGroup rebuilds one course group's timetable. Sessions of the
// other groups stay untouched and act as fixed obstacles for teachers and
// rooms. The previous sessions of the group are replaced in one transaction
// only after the solver finishes, so a failed run leaves the old timetable
// in place.
func (s *TimetableService) GenerateForGroup(groupID uint) (*GenerationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var group models.CourseGroup
	if err := database.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseGroupNotFound
		}
		return nil, err
	}

	var reqs []models.Requirement
	if err := database.DB.Where("course_group_id = ?", groupID).Find(&reqs).Error; err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, ErrNoRequirements
	}

	world, err := s.loadWorld()
	if err != nil {
		return nil, err
	}

	var others []models.Assignment
	if err := database.DB.Where("course_group_id <> ?", groupID).Find(&others).Error; err != nil {
		return nil, err
	}

	solver := scheduler.NewSolver(scheduler.Input{
		Requirements: toSolverRequirements(reqs),
		Teachers:     world.teachers,
		Rooms:        world.rooms,
		Groups:       world.groups,
		AvoidSlots:   world.avoid,
		Seed:         toSeed(others),
	})
	result := solver.Solve(toSolverRequirements(reqs))

	rows, err := toModels(result.Assignments)
	if err != nil {
		return nil, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_group_id = ?", groupID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist timetable: %w", err)
	}

	summary := &GenerationSummary{
		CourseGroupID: groupID,
		GroupName:     group.DisplayName(),
		Assigned:      len(rows),
		Deficits:      result.Deficits,
		Complete:      result.Complete,
	}

	logrus.WithFields(logrus.Fields{
		"course_group_id": groupID,
		"assigned":        summary.Assigned,
		"deficits":        len(summary.Deficits),
		"complete":        summary.Complete,
	}).Info("Timetable generated")

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventTimetableGenerated, summary)
	}
	return summary, nil
}

// GenerateAll rebuilds the whole timetable from scratch. Groups are solved
// one after another, each seeing the sessions already placed for the
// previous ones, and the full replacement is persisted in one transaction.
func (s *TimetableService) GenerateAll() ([]GenerationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []models.CourseGroup
	if err := database.DB.Order("year, division").Find(&groups).Error; err != nil {
		return nil, err
	}

	world, err := s.loadWorld()
	if err != nil {
		return nil, err
	}

	var allReqs []models.Requirement
	if err := database.DB.Find(&allReqs).Error; err != nil {
		return nil, err
	}
	reqsByGroup := make(map[uint][]models.Requirement)
	for _, r := range allReqs {
		reqsByGroup[r.CourseGroupID] = append(reqsByGroup[r.CourseGroupID], r)
	}

	var (
		summaries []GenerationSummary
		seed      []scheduler.Assignment
		rows      []models.Assignment
	)

	for i := range groups {
		group := groups[i]
		reqs := reqsByGroup[group.ID]
		if len(reqs) == 0 {
			continue
		}

		solver := scheduler.NewSolver(scheduler.Input{
			Requirements: toSolverRequirements(reqs),
			Teachers:     world.teachers,
			Rooms:        world.rooms,
			Groups:       world.groups,
			AvoidSlots:   world.avoid,
			Seed:         seed,
		})
		result := solver.Solve(toSolverRequirements(reqs))

		groupRows, err := toModels(result.Assignments)
		if err != nil {
			return nil, err
		}
		rows = append(rows, groupRows...)
		seed = append(seed, result.Assignments...)

		summaries = append(summaries, GenerationSummary{
			CourseGroupID: group.ID,
			GroupName:     group.DisplayName(),
			Assigned:      len(groupRows),
			Deficits:      result.Deficits,
			Complete:      result.Complete,
		})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist timetable: %w", err)
	}

	logrus.WithField("groups", len(summaries)).Info("Full timetable generated")

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventTimetableGenerated, summaries)
	}
	return summaries, nil
}

// MoveAssignment relocates one session to a new slot, swapping with the
// session of the same group already there if any. Validation runs over the
// full in-memory assignment set; the database only changes after both
// halves pass.
func (s *TimetableService) MoveAssignment(assignmentID uint, day, start string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Assignment
	if err := database.DB.Find(&all).Error; err != nil {
		return nil, err
	}

	working := make([]*scheduler.Assignment, 0, len(all))
	for i := range all {
		a := all[i]
		working = append(working, &scheduler.Assignment{
			ID:        a.ID,
			Day:       a.Day,
			Start:     a.StartTime,
			GroupID:   a.CourseGroupID,
			SubjectID: a.SubjectID,
			TeacherID: a.TeacherID,
			RoomID:    a.RoomID,
		})
	}

	ctx, err := s.relocationContext()
	if err != nil {
		return nil, err
	}

	outcome, err := scheduler.Relocate(ctx, working, assignmentID, day, start)
	if err != nil {
		return nil, err
	}

	moved := []*scheduler.Assignment{outcome.Moved}
	if outcome.Swapped {
		moved = append(moved, outcome.Occupant)
	}

	result := &MoveResult{Swapped: outcome.Swapped}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, m := range moved {
			label, err := scheduler.PeriodRange(m.Start)
			if err != nil {
				return err
			}
			updates := map[string]interface{}{
				"day":          m.Day,
				"start_time":   m.Start,
				"period_label": label,
			}
			if err := tx.Model(&models.Assignment{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
				return err
			}

			var row models.Assignment
			if err := tx.Preload("Subject").Preload("Teacher").Preload("Room").First(&row, m.ID).Error; err != nil {
				return err
			}
			if i == 0 {
				result.Moved = &row
			} else {
				result.Occupant = &row
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist relocation: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventAssignmentMoved, result)
	}
	return result, nil
}

func (s *TimetableService) relocationContext() (scheduler.RelocationContext, error) {
	var teachers []models.Teacher
	if err := database.DB.Find(&teachers).Error; err != nil {
		return scheduler.RelocationContext{}, err
	}
	var groups []models.CourseGroup
	if err := database.DB.Find(&groups).Error; err != nil {
		return scheduler.RelocationContext{}, err
	}

	records := make([]scheduler.TeacherRecord, 0, len(teachers))
	teacherNames := make(map[uint]string, len(teachers))
	for _, t := range teachers {
		records = append(records, scheduler.TeacherRecord{
			ID:           t.ID,
			Name:         t.Name,
			Availability: []byte(t.Availability),
		})
		teacherNames[t.ID] = t.Name
	}
	groupNames := make(map[uint]string, len(groups))
	for i := range groups {
		groupNames[groups[i].ID] = groups[i].DisplayName()
	}

	return scheduler.RelocationContext{
		Availability: scheduler.BuildAvailabilityIndex(records),
		TeacherNames: teacherNames,
		GroupNames:   groupNames,
	}, nil
}

// FindSubstitutes lists teachers who can cover a slot: their availability
// must name the slot explicitly and they must not already teach then.
// A teacher who never restricted their hours is not offered, only teachers
// who opted in to the slot are.
func (s *TimetableService) FindSubstitutes(day, start string) ([]SubstituteCandidate, error) {
	if !scheduler.ValidSlot(day, start) {
		return nil, fmt.Errorf("%w: %s %s", scheduler.ErrInvalidSlot, day, start)
	}
	token := scheduler.Token(day, start)

	var teachers []models.Teacher
	if err := database.DB.Order("name").Find(&teachers).Error; err != nil {
		return nil, err
	}

	busy := make(map[uint]bool)
	var occupied []models.Assignment
	if err := database.DB.Where("day = ? AND start_time = ? AND teacher_id IS NOT NULL", day, start).
		Find(&occupied).Error; err != nil {
		return nil, err
	}
	for _, a := range occupied {
		if a.TeacherID != nil {
			busy[*a.TeacherID] = true
		}
	}

	candidates := []SubstituteCandidate{}
	for _, t := range teachers {
		av, err := scheduler.ParseAvailability([]byte(t.Availability))
		if err != nil {
			logrus.WithField("teacher_id", t.ID).WithError(err).Warn("Skipping teacher with malformed availability")
			continue
		}
		if !av.Restricted() || !av.Allows(token) {
			continue
		}
		if busy[t.ID] {
			continue
		}
		candidates = append(candidates, SubstituteCandidate{TeacherID: t.ID, Name: t.Name})
	}
	return candidates, nil
}

// WorkloadReport compares every teacher's required weekly hours (sum of
// their requirements) to the hours the current timetable assigns them.
func (s *TimetableService) WorkloadReport() ([]TeacherWorkload, error) {
	var teachers []models.Teacher
	if err := database.DB.Order("name").Find(&teachers).Error; err != nil {
		return nil, err
	}

	var reqs []models.Requirement
	if err := database.DB.Find(&reqs).Error; err != nil {
		return nil, err
	}
	required := make(map[uint]int)
	for _, r := range reqs {
		if r.TeacherID != nil {
			required[*r.TeacherID] += r.WeeklyHours
		}
	}

	var assignments []models.Assignment
	if err := database.DB.Where("teacher_id IS NOT NULL").Find(&assignments).Error; err != nil {
		return nil, err
	}
	assigned := make(map[uint]int)
	for _, a := range assignments {
		if a.TeacherID != nil {
			assigned[*a.TeacherID]++
		}
	}

	report := make([]TeacherWorkload, 0, len(teachers))
	for _, t := range teachers {
		report = append(report, TeacherWorkload{
			TeacherID:     t.ID,
			Name:          t.Name,
			RequiredHours: required[t.ID],
			AssignedHours: assigned[t.ID],
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].AssignedHours > report[j].AssignedHours
	})
	return report, nil
}

// ResetTimetable discards every committed session.
func (s *TimetableService) ResetTimetable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.DB.Where("1 = 1").Delete(&models.Assignment{}).Error; err != nil {
		return err
	}

	logrus.Info("Timetable reset")
	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventTimetableReset, nil)
	}
	return nil
}
