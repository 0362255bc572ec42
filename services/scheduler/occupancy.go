package scheduler

// occupancyEntry records one committed {group, teacher, room} triple at a
// slot. Zero means "none" for teacher and room.
type occupancyEntry struct {
	group   uint
	teacher uint
	room    uint
}

// Undo identifies one Commit so backtracking can release exactly that entry.
type Undo struct {
	token string
	entry occupancyEntry
}

// Occupancy indexes committed sessions by slot token across every course
// group in the school. It is the single source of truth for conflict
// detection during search: all predicates are map lookups plus a scan of the
// handful of entries sharing one slot.
type Occupancy struct {
	slots map[string][]occupancyEntry
}

func NewOccupancy() *Occupancy {
	return &Occupancy{slots: make(map[string][]occupancyEntry)}
}

// Commit records a session at the token and returns the undo handle for it.
func (o *Occupancy) Commit(token string, group, teacher, room uint) Undo {
	e := occupancyEntry{group: group, teacher: teacher, room: room}
	o.slots[token] = append(o.slots[token], e)
	return Undo{token: token, entry: e}
}

// Release removes the most recently committed entry matching the undo
// handle. Scanning from the end keeps repeated try/undo cycles on the same
// slot correct: the entry removed is the one the handle was issued for.
func (o *Occupancy) Release(u Undo) {
	entries := o.slots[u.token]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i] == u.entry {
			o.slots[u.token] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// GroupBusy reports whether the course group already has a session at the token.
func (o *Occupancy) GroupBusy(token string, group uint) bool {
	for _, e := range o.slots[token] {
		if e.group == group {
			return true
		}
	}
	return false
}

// TeacherBusy reports whether the teacher is already committed at the token,
// in any course group.
func (o *Occupancy) TeacherBusy(token string, teacher uint) bool {
	if teacher == 0 {
		return false
	}
	for _, e := range o.slots[token] {
		if e.teacher == teacher {
			return true
		}
	}
	return false
}

// RoomBusy reports whether the room is already taken at the token.
func (o *Occupancy) RoomBusy(token string, room uint) bool {
	if room == 0 {
		return false
	}
	for _, e := range o.slots[token] {
		if e.room == room {
			return true
		}
	}
	return false
}
