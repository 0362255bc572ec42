package scheduler

import (
	"fmt"
	"testing"
)

func uintPtr(v uint) *uint { return &v }

// tokensFor builds every slot token of the given days, in period order.
func tokensFor(days ...string) []string {
	var tokens []string
	for _, d := range days {
		for _, p := range Periods {
			tokens = append(tokens, Token(d, p))
		}
	}
	return tokens
}

func availabilityJSON(tokens []string) []byte {
	out := []byte(`[`)
	for i, t := range tokens {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, fmt.Sprintf("%q", t)...)
	}
	return append(out, ']')
}

func TestSolveCompleteSchedule(t *testing.T) {
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 4},
			{ID: 2, GroupID: 1, SubjectID: 2, TeacherID: uintPtr(2), WeeklyHours: 3},
		},
		Teachers: []TeacherRecord{
			{ID: 1, Name: "Ana"},
			{ID: 2, Name: "Bruno"},
		},
		Groups: []GroupRecord{{ID: 1, Size: 30}},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if !result.Complete {
		t.Fatalf("expected complete schedule, got deficits %v", result.Deficits)
	}
	if len(result.Assignments) != 7 {
		t.Fatalf("expected 7 assignments, got %d", len(result.Assignments))
	}
	assertNoConflicts(t, result.Assignments)
}

func TestSolveRestrictedTeacherDeficit(t *testing.T) {
	// The teacher offers exactly three slots but owes four hours across two
	// requirements, so one hour cannot be placed anywhere.
	slots := []string{
		Token("Lunes", "07:40"),
		Token("Lunes", "08:20"),
		Token("Martes", "07:40"),
	}
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 2},
			{ID: 2, GroupID: 1, SubjectID: 2, TeacherID: uintPtr(1), WeeklyHours: 2},
		},
		Teachers: []TeacherRecord{
			{ID: 1, Name: "Ana", Availability: availabilityJSON(slots)},
		},
		Groups: []GroupRecord{{ID: 1, Size: 30}},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if result.Complete {
		t.Fatalf("expected an incomplete schedule")
	}
	if len(result.Assignments) != 3 {
		t.Fatalf("expected 3 placed hours, got %d", len(result.Assignments))
	}
	if len(result.Deficits) != 1 {
		t.Fatalf("expected 1 deficit, got %v", result.Deficits)
	}
	d := result.Deficits[0]
	if d.MissingHours != 1 || d.Reason != ReasonSlotsExhausted {
		t.Fatalf("unexpected deficit %+v", d)
	}
	assertNoConflicts(t, result.Assignments)
}

func TestSolveRoomCapacityDeficit(t *testing.T) {
	// The only lab seats 20 but the group has 30 students, so the lab
	// requirement cannot be placed at all.
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 2, RoomType: "Laboratorio"},
			{ID: 2, GroupID: 1, SubjectID: 2, TeacherID: uintPtr(1), WeeklyHours: 2},
		},
		Teachers: []TeacherRecord{{ID: 1, Name: "Ana"}},
		Rooms: []RoomRecord{
			{ID: 1, Name: "Laboratorio", Type: "Laboratorio", Capacity: 20},
		},
		Groups: []GroupRecord{{ID: 1, Size: 30}},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if result.Complete {
		t.Fatalf("expected an incomplete schedule")
	}
	if len(result.Deficits) != 1 {
		t.Fatalf("expected 1 deficit, got %v", result.Deficits)
	}
	d := result.Deficits[0]
	if d.RequirementID != 1 || d.MissingHours != 2 {
		t.Fatalf("unexpected deficit %+v", d)
	}
	// The unconstrained requirement still gets its hours
	if len(result.Assignments) != 2 {
		t.Fatalf("expected 2 placed hours, got %d", len(result.Assignments))
	}
}

func TestSolveNoTeacherDeficit(t *testing.T) {
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: nil, WeeklyHours: 3},
			{ID: 2, GroupID: 1, SubjectID: 2, TeacherID: uintPtr(1), WeeklyHours: 2},
		},
		Teachers: []TeacherRecord{{ID: 1, Name: "Ana"}},
		Groups:   []GroupRecord{{ID: 1, Size: 25}},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if result.Complete {
		t.Fatalf("expected an incomplete schedule")
	}
	if len(result.Deficits) != 1 {
		t.Fatalf("expected 1 deficit, got %v", result.Deficits)
	}
	d := result.Deficits[0]
	if d.RequirementID != 1 || d.MissingHours != 3 || d.Reason != ReasonNoTeacher {
		t.Fatalf("unexpected deficit %+v", d)
	}
	if len(result.Assignments) != 2 {
		t.Fatalf("teacher-backed requirement should still be placed, got %d", len(result.Assignments))
	}
}

func TestSolveAvoidSlotsUsedAsFallbackOnly(t *testing.T) {
	avoid := Token("Lunes", "07:40")
	available := []string{
		avoid,
		Token("Lunes", "08:20"),
		Token("Martes", "07:40"),
	}

	// Two hours fit without touching the avoid slot.
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 2},
		},
		Teachers: []TeacherRecord{
			{ID: 1, Name: "Ana", Availability: availabilityJSON(available)},
		},
		Groups:     []GroupRecord{{ID: 1, Size: 30}},
		AvoidSlots: []string{avoid},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if !result.Complete {
		t.Fatalf("expected complete schedule, got %v", result.Deficits)
	}
	for _, a := range result.Assignments {
		if Token(a.Day, a.Start) == avoid {
			t.Fatalf("avoid slot used while free preferred slots remained")
		}
	}

	// Three hours force the avoid slot into service.
	in.Requirements[0].WeeklyHours = 3
	s = NewSolver(in)
	result = s.Solve(in.Requirements)

	if !result.Complete {
		t.Fatalf("expected complete schedule using the avoid slot, got %v", result.Deficits)
	}
	used := false
	for _, a := range result.Assignments {
		if Token(a.Day, a.Start) == avoid {
			used = true
		}
	}
	if !used {
		t.Fatalf("avoid slot should be admitted once preferred slots run out")
	}
}

func TestSolvePreferredRoomIsExclusive(t *testing.T) {
	// The requirement pins a specific room; a bigger free room of the same
	// type must not be substituted.
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 1,
				RoomType: "Laboratorio", PreferredRoomID: uintPtr(2)},
		},
		Teachers: []TeacherRecord{{ID: 1, Name: "Ana"}},
		Rooms: []RoomRecord{
			{ID: 1, Name: "Laboratorio 1", Type: "Laboratorio", Capacity: 40},
			{ID: 2, Name: "Laboratorio 2", Type: "Laboratorio", Capacity: 35},
		},
		Groups: []GroupRecord{{ID: 1, Size: 30}},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if !result.Complete {
		t.Fatalf("expected complete schedule, got %v", result.Deficits)
	}
	a := result.Assignments[0]
	if a.RoomID == nil || *a.RoomID != 2 {
		t.Fatalf("expected preferred room 2, got %v", a.RoomID)
	}
}

func TestSolveSeedBlocksTeacherAndRoom(t *testing.T) {
	// Another group already holds the teacher on Monday first period; the
	// new group's single hour must land elsewhere.
	seedSlot := Token("Lunes", "07:40")
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 2, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 1},
		},
		Teachers: []TeacherRecord{{ID: 1, Name: "Ana"}},
		Groups:   []GroupRecord{{ID: 1, Size: 30}, {ID: 2, Size: 30}},
		Seed: []Assignment{
			{Day: "Lunes", Start: "07:40", GroupID: 1, SubjectID: 9, TeacherID: uintPtr(1)},
		},
	}
	s := NewSolver(in)
	result := s.Solve(in.Requirements)

	if !result.Complete {
		t.Fatalf("expected complete schedule, got %v", result.Deficits)
	}
	if got := Token(result.Assignments[0].Day, result.Assignments[0].Start); got == seedSlot {
		t.Fatalf("teacher double-booked against seeded session")
	}
}

func TestOrderRequirementsHardestFirst(t *testing.T) {
	reqs := []Requirement{
		{ID: 1, WeeklyHours: 2},
		{ID: 2, WeeklyHours: 5},
		{ID: 3, WeeklyHours: 1, RoomType: "Gimnasio"},
		{ID: 4, WeeklyHours: 4, PreferredRoomID: uintPtr(7)},
	}
	queue := orderRequirements(reqs)

	wantOrder := []uint{4, 3, 2, 1}
	for i, want := range wantOrder {
		if queue[i].ID != want {
			t.Fatalf("position %d: expected requirement %d, got %d", i, want, queue[i].ID)
		}
	}

	// Input slice stays untouched
	if reqs[0].ID != 1 {
		t.Fatalf("orderRequirements mutated its input")
	}
}

func TestSolveDeterministic(t *testing.T) {
	in := Input{
		Requirements: []Requirement{
			{ID: 1, GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1), WeeklyHours: 3},
			{ID: 2, GroupID: 1, SubjectID: 2, TeacherID: uintPtr(2), WeeklyHours: 3},
		},
		Teachers: []TeacherRecord{
			{ID: 1, Name: "Ana", Availability: availabilityJSON(tokensFor("Lunes"))},
			{ID: 2, Name: "Bruno", Availability: availabilityJSON(tokensFor("Martes"))},
		},
		Groups: []GroupRecord{{ID: 1, Size: 30}},
	}

	first := NewSolver(in).Solve(in.Requirements)
	second := NewSolver(in).Solve(in.Requirements)

	if len(first.Assignments) != len(second.Assignments) {
		t.Fatalf("rerun produced a different assignment count")
	}
	for i := range first.Assignments {
		a, b := first.Assignments[i], second.Assignments[i]
		if a.Day != b.Day || a.Start != b.Start || a.SubjectID != b.SubjectID {
			t.Fatalf("rerun diverged at %d: %+v vs %+v", i, a, b)
		}
	}
}

// assertNoConflicts sweeps a result for the core invariants: one session
// per group, teacher and room at any slot.
func assertNoConflicts(t *testing.T, assignments []Assignment) {
	t.Helper()
	groupSeen := make(map[string]bool)
	teacherSeen := make(map[string]bool)
	roomSeen := make(map[string]bool)
	for _, a := range assignments {
		token := Token(a.Day, a.Start)
		gk := fmt.Sprintf("%s|%d", token, a.GroupID)
		if groupSeen[gk] {
			t.Fatalf("group %d double-booked at %s", a.GroupID, token)
		}
		groupSeen[gk] = true
		if a.TeacherID != nil {
			tk := fmt.Sprintf("%s|%d", token, *a.TeacherID)
			if teacherSeen[tk] {
				t.Fatalf("teacher %d double-booked at %s", *a.TeacherID, token)
			}
			teacherSeen[tk] = true
		}
		if a.RoomID != nil {
			rk := fmt.Sprintf("%s|%d", token, *a.RoomID)
			if roomSeen[rk] {
				t.Fatalf("room %d double-booked at %s", *a.RoomID, token)
			}
			roomSeen[rk] = true
		}
	}
}
