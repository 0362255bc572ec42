package scheduler

import (
	"errors"
	"fmt"
)

// ErrAssignmentNotFound is returned when the session to relocate does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ConflictError rejects a relocation and names the entity in the way:
// the teacher whose availability blocks the destination, or the course
// group holding the colliding session.
type ConflictError struct {
	Entity string
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}

// RelocationOutcome describes an applied move. When Swapped is true the
// occupant session was sent to the mover's origin slot; both halves were
// validated before anything changed.
type RelocationOutcome struct {
	Moved    *Assignment
	Occupant *Assignment
	Swapped  bool
}

// RelocationContext supplies the lookup data relocation validation needs.
type RelocationContext struct {
	Availability AvailabilityIndex
	TeacherNames map[uint]string
	GroupNames   map[uint]string
}

// Relocate moves one committed session to (newDay, newStart), swapping with
// the session of the same course group already there if any. Both halves of
// a swap are validated symmetrically and nothing is mutated until every
// check passes: a rejected call leaves the assignment set exactly as it was.
func Relocate(ctx RelocationContext, assignments []*Assignment, id uint, newDay, newStart string) (*RelocationOutcome, error) {
	if !ValidSlot(newDay, newStart) {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidSlot, newDay, newStart)
	}

	var mover *Assignment
	for _, a := range assignments {
		if a.ID == id {
			mover = a
			break
		}
	}
	if mover == nil {
		return nil, ErrAssignmentNotFound
	}

	// The occupant is the same group's session already sitting at the
	// destination; it swaps into the mover's origin slot.
	var occupant *Assignment
	for _, a := range assignments {
		if a.ID != mover.ID && a.GroupID == mover.GroupID &&
			a.Day == newDay && a.Start == newStart {
			occupant = a
			break
		}
	}

	// Both the mover and the occupant vacate their slots, so neither may
	// count as a collision when validating the other's destination.
	vacating := map[uint]struct{}{mover.ID: {}}
	if occupant != nil {
		vacating[occupant.ID] = struct{}{}
	}

	if err := validateHalf(ctx, assignments, mover, newDay, newStart, vacating); err != nil {
		return nil, err
	}
	originDay, originStart := mover.Day, mover.Start
	if occupant != nil {
		if err := validateHalf(ctx, assignments, occupant, originDay, originStart, vacating); err != nil {
			return nil, err
		}
		occupant.Day = originDay
		occupant.Start = originStart
	}

	mover.Day = newDay
	mover.Start = newStart

	return &RelocationOutcome{Moved: mover, Occupant: occupant, Swapped: occupant != nil}, nil
}

// validateHalf checks one session against one destination slot: teacher
// availability there, and no session outside the vacating set booking the
// same teacher at it.
func validateHalf(ctx RelocationContext, assignments []*Assignment, moving *Assignment, day, start string, vacating map[uint]struct{}) error {
	if moving.TeacherID == nil {
		return nil
	}
	teacher := *moving.TeacherID
	token := Token(day, start)
	if !ctx.Availability.Allows(teacher, token) {
		return &ConflictError{
			Entity: ctx.TeacherNames[teacher],
			Detail: fmt.Sprintf("teacher %s is not available on %s at %s", ctx.TeacherNames[teacher], day, start),
		}
	}
	for _, a := range assignments {
		if _, skip := vacating[a.ID]; skip {
			continue
		}
		if a.TeacherID == nil || *a.TeacherID != teacher {
			continue
		}
		if a.Day == day && a.Start == start {
			group := ctx.GroupNames[a.GroupID]
			return &ConflictError{
				Entity: group,
				Detail: fmt.Sprintf("teacher %s is already assigned to %s at that time", ctx.TeacherNames[teacher], group),
			}
		}
	}
	return nil
}
