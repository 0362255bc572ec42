package scheduler

import (
	"errors"
	"testing"
)

func relocationFixture() (RelocationContext, []*Assignment) {
	ctx := RelocationContext{
		Availability: AvailabilityIndex{
			1: Unrestricted(),
			2: RestrictedTo([]string{
				Token("Lunes", "07:40"),
				Token("Lunes", "08:20"),
			}),
		},
		TeacherNames: map[uint]string{1: "Ana García", 2: "Bruno Díaz"},
		GroupNames:   map[uint]string{1: "1° A", 2: "1° B"},
	}
	assignments := []*Assignment{
		{ID: 10, Day: "Lunes", Start: "07:40", GroupID: 1, SubjectID: 1, TeacherID: uintPtr(1)},
		{ID: 11, Day: "Lunes", Start: "08:20", GroupID: 1, SubjectID: 2, TeacherID: uintPtr(2)},
		{ID: 20, Day: "Lunes", Start: "09:00", GroupID: 2, SubjectID: 1, TeacherID: uintPtr(1)},
	}
	return ctx, assignments
}

func TestRelocateToFreeSlot(t *testing.T) {
	ctx, assignments := relocationFixture()

	out, err := Relocate(ctx, assignments, 10, "Martes", "10:20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Swapped || out.Occupant != nil {
		t.Fatalf("expected a plain move, got %+v", out)
	}
	if out.Moved.Day != "Martes" || out.Moved.Start != "10:20" {
		t.Fatalf("assignment not moved: %+v", out.Moved)
	}
}

func TestRelocateSwapsWithOccupant(t *testing.T) {
	ctx, assignments := relocationFixture()

	// Group 1 already holds 08:20 with teacher 2, who can also teach at
	// 07:40, so the two sessions trade places.
	out, err := Relocate(ctx, assignments, 10, "Lunes", "08:20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Swapped || out.Occupant == nil {
		t.Fatalf("expected a swap, got %+v", out)
	}
	if out.Moved.ID != 10 || out.Moved.Start != "08:20" {
		t.Fatalf("mover landed wrong: %+v", out.Moved)
	}
	if out.Occupant.ID != 11 || out.Occupant.Start != "07:40" {
		t.Fatalf("occupant should hold the vacated slot: %+v", out.Occupant)
	}
}

func TestRelocateInvalidSlot(t *testing.T) {
	ctx, assignments := relocationFixture()

	cases := []struct {
		name  string
		day   string
		start string
	}{
		{name: "unknown day", day: "Domingo", start: "07:40"},
		{name: "off-grid time", day: "Lunes", start: "07:45"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Relocate(ctx, assignments, 10, tc.day, tc.start)
			if !errors.Is(err, ErrInvalidSlot) {
				t.Fatalf("expected ErrInvalidSlot, got %v", err)
			}
		})
	}
}

func TestRelocateUnknownAssignment(t *testing.T) {
	ctx, assignments := relocationFixture()

	_, err := Relocate(ctx, assignments, 999, "Martes", "07:40")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestRelocateAvailabilityConflict(t *testing.T) {
	ctx, assignments := relocationFixture()

	// Teacher 2 only teaches Monday mornings.
	_, err := Relocate(ctx, assignments, 11, "Viernes", "10:20")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Entity != "Bruno Díaz" {
		t.Fatalf("conflict should name the teacher, got %q", conflict.Entity)
	}
	// Nothing moved
	if assignments[1].Day != "Lunes" || assignments[1].Start != "08:20" {
		t.Fatalf("rejected move mutated the assignment: %+v", assignments[1])
	}
}

func TestRelocateTeacherDoubleBooking(t *testing.T) {
	ctx, assignments := relocationFixture()

	// Teacher 1 already teaches group 2 at Monday 09:00; moving group 1's
	// session there would double-book them.
	_, err := Relocate(ctx, assignments, 10, "Lunes", "09:00")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Entity != "1° B" {
		t.Fatalf("conflict should name the colliding group, got %q", conflict.Entity)
	}
}

func TestRelocateFailedSwapLeavesStateUntouched(t *testing.T) {
	ctx, assignments := relocationFixture()

	assignments = append(assignments, &Assignment{
		ID: 12, Day: "Martes", Start: "07:40", GroupID: 1, SubjectID: 3, TeacherID: uintPtr(1),
	})

	// Moving 12 onto 11's slot sends 11 to Martes 07:40, which teacher 2's
	// availability forbids; the whole swap must be rejected.
	_, err := Relocate(ctx, assignments, 12, "Lunes", "08:20")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if assignments[1].Day != "Lunes" || assignments[1].Start != "08:20" {
		t.Fatalf("occupant mutated by rejected swap: %+v", assignments[1])
	}
	if assignments[3].Day != "Martes" || assignments[3].Start != "07:40" {
		t.Fatalf("mover mutated by rejected swap: %+v", assignments[3])
	}
}
