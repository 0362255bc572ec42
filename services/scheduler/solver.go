package scheduler

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Requirement is one weekly obligation to place: a subject taught to a
// course group by a teacher, for WeeklyHours modules, optionally bound to a
// room type or to one specific room.
type Requirement struct {
	ID              uint
	GroupID         uint
	SubjectID       uint
	TeacherID       *uint
	WeeklyHours     int
	RoomType        string
	PreferredRoomID *uint
}

// RoomRecord is the solver's projection of a room.
type RoomRecord struct {
	ID       uint
	Name     string
	Type     string
	Capacity int
}

// GroupRecord carries the student count used as the room capacity bound.
type GroupRecord struct {
	ID   uint
	Size int
}

// Assignment is one placed session. RoomID is nil when the requirement
// needed no room.
type Assignment struct {
	ID        uint
	Day       string
	Start     string
	GroupID   uint
	SubjectID uint
	TeacherID *uint
	RoomID    *uint
}

// Deficit reports how many of a requirement's weekly hours could not be
// placed, and why when the cause is structural.
type Deficit struct {
	RequirementID uint   `json:"requirement_id"`
	SubjectID     uint   `json:"subject_id"`
	GroupID       uint   `json:"course_group_id"`
	MissingHours  int    `json:"missing_hours"`
	Reason        string `json:"reason,omitempty"`
}

// Deficit reasons
const (
	ReasonNoTeacher      = "requirement has no teacher assigned"
	ReasonSlotsExhausted = "no free slot/room combination left"
)

// Result is what one generation run produces: the placed sessions plus the
// per-requirement shortfall. A run always yields a Result; an infeasible
// input shows up as deficits, never as an empty error.
type Result struct {
	Assignments []Assignment
	Deficits    []Deficit
	Complete    bool
}

// Input bundles everything one solver run reads. Seed assignments are the
// committed sessions of *other* course groups, so cross-group conflicts are
// visible from the first probe.
type Input struct {
	Requirements []Requirement
	Teachers     []TeacherRecord
	Rooms        []RoomRecord
	Groups       []GroupRecord
	AvoidSlots   []string
	Seed         []Assignment
}

type slot struct {
	day   string
	start string
	token string
}

// maxSearchNodes bounds the strict search. The space is small in practice
// (days × periods × requirements) but an infeasible input could still make
// exhaustive proof expensive; past the budget the run degrades to the
// best-effort pass instead of stalling an interactive request.
const maxSearchNodes = 200_000

// Solver runs one backtracking search over an occupancy index it owns.
// It is single-use and not safe for concurrent calls; the service layer
// serializes runs.
type Solver struct {
	availability AvailabilityIndex
	occupancy    *Occupancy
	rooms        map[uint]RoomRecord
	roomsByType  map[string][]RoomRecord
	groups       map[uint]GroupRecord
	avoid        map[string]struct{}
	trail        []Undo
	nodes        int
}

// NewSolver builds the in-memory indices for one run.
func NewSolver(in Input) *Solver {
	s := &Solver{
		availability: BuildAvailabilityIndex(in.Teachers),
		occupancy:    NewOccupancy(),
		rooms:        make(map[uint]RoomRecord, len(in.Rooms)),
		roomsByType:  make(map[string][]RoomRecord),
		groups:       make(map[uint]GroupRecord, len(in.Groups)),
		avoid:        make(map[string]struct{}, len(in.AvoidSlots)),
	}
	for _, r := range in.Rooms {
		s.rooms[r.ID] = r
		s.roomsByType[r.Type] = append(s.roomsByType[r.Type], r)
	}
	for _, g := range in.Groups {
		s.groups[g.ID] = g
	}
	for _, t := range in.AvoidSlots {
		s.avoid[t] = struct{}{}
	}
	for _, a := range in.Seed {
		var teacher, room uint
		if a.TeacherID != nil {
			teacher = *a.TeacherID
		}
		if a.RoomID != nil {
			room = *a.RoomID
		}
		s.occupancy.Commit(Token(a.Day, a.Start), a.GroupID, teacher, room)
	}
	return s
}

// Solve places the given requirements. It first runs a strict backtracking
// search for a complete schedule; only when that exhausts does it fall back
// to a best-effort pass that places each requirement's maximum hours in
// queue order and reports the remainder as deficits.
func (s *Solver) Solve(reqs []Requirement) Result {
	queue := orderRequirements(reqs)

	if s.allSchedulable(queue) {
		var placed []Assignment
		if s.search(queue, 0, &placed) {
			return Result{Assignments: placed, Complete: true}
		}
		s.unwind(0)
	}

	assignments, deficits := s.bestEffort(queue)
	if len(deficits) > 0 {
		logrus.WithField("deficits", len(deficits)).Info("Timetable generation finished with unplaced hours")
	}
	return Result{Assignments: assignments, Deficits: deficits, Complete: len(deficits) == 0}
}

// orderRequirements sorts hardest-first: requirements bound to a specific
// room or a non-default room type before generic ones, then by descending
// weekly hours. The sort is stable so equal requirements keep input order
// and reruns stay deterministic.
func orderRequirements(reqs []Requirement) []Requirement {
	queue := make([]Requirement, len(reqs))
	copy(queue, reqs)
	sort.SliceStable(queue, func(i, j int) bool {
		ci, cj := roomConstrained(queue[i]), roomConstrained(queue[j])
		if ci != cj {
			return ci
		}
		return queue[i].WeeklyHours > queue[j].WeeklyHours
	})
	return queue
}

func roomConstrained(r Requirement) bool {
	if r.PreferredRoomID != nil {
		return true
	}
	return r.RoomType != "" && r.RoomType != DefaultRoomType
}

func (s *Solver) allSchedulable(reqs []Requirement) bool {
	for _, r := range reqs {
		if r.TeacherID == nil {
			return false
		}
	}
	return true
}

// search is the strict recursive descent: all hours of requirement i, then
// requirement i+1. Preferred (non-avoid) slots are tried for the full hour
// count first; only if that subtree exhausts are avoid slots admitted.
func (s *Solver) search(reqs []Requirement, i int, placed *[]Assignment) bool {
	if i == len(reqs) {
		return true
	}
	req := reqs[i]
	preferred, fallback := s.candidates(req)
	if s.placeHours(reqs, i, req, preferred, req.WeeklyHours, 0, placed) {
		return true
	}
	combined := append(append([]slot{}, preferred...), fallback...)
	return s.placeHours(reqs, i, req, combined, req.WeeklyHours, 0, placed)
}

// placeHours picks candidate slots in ascending index order (so each slot
// combination is visited once), commits tentatively, and recurses. On
// failure the tentative commit is released off the trail and the next
// candidate is tried.
func (s *Solver) placeHours(reqs []Requirement, i int, req Requirement, cands []slot, need, from int, placed *[]Assignment) bool {
	if need == 0 {
		return s.search(reqs, i+1, placed)
	}
	if s.nodes >= maxSearchNodes {
		return false
	}
	s.nodes++
	for ci := from; ci <= len(cands)-need; ci++ {
		c := cands[ci]
		roomID, ok := s.viable(req, c.token)
		if !ok {
			continue
		}
		mark := len(s.trail)
		s.commit(req, c, roomID, placed)
		if s.placeHours(reqs, i, req, cands, need-1, ci+1, placed) {
			return true
		}
		s.unwind(mark)
		*placed = (*placed)[:len(*placed)-1]
	}
	return false
}

// bestEffort places each requirement independently, keeping whatever fits.
// Within one requirement slot choices do not interact (every candidate is a
// distinct slot), so greedy in candidate order already places the maximum
// possible hours given the commitments made so far.
func (s *Solver) bestEffort(reqs []Requirement) ([]Assignment, []Deficit) {
	var placed []Assignment
	var deficits []Deficit
	for _, req := range reqs {
		if req.TeacherID == nil {
			deficits = append(deficits, Deficit{
				RequirementID: req.ID,
				SubjectID:     req.SubjectID,
				GroupID:       req.GroupID,
				MissingHours:  req.WeeklyHours,
				Reason:        ReasonNoTeacher,
			})
			continue
		}
		need := req.WeeklyHours
		preferred, fallback := s.candidates(req)
		for _, pass := range [][]slot{preferred, fallback} {
			for _, c := range pass {
				if need == 0 {
					break
				}
				roomID, ok := s.viable(req, c.token)
				if !ok {
					continue
				}
				s.commit(req, c, roomID, &placed)
				need--
			}
		}
		if need > 0 {
			deficits = append(deficits, Deficit{
				RequirementID: req.ID,
				SubjectID:     req.SubjectID,
				GroupID:       req.GroupID,
				MissingHours:  need,
				Reason:        ReasonSlotsExhausted,
			})
		}
	}
	return placed, deficits
}

// candidates returns the requirement teacher's usable slots split into
// preferred (outside the avoid set) and fallback (inside it), each in
// (day, period) order.
func (s *Solver) candidates(req Requirement) (preferred, fallback []slot) {
	for _, day := range Weekdays {
		for _, start := range Periods {
			token := Token(day, start)
			if !s.availability.Allows(*req.TeacherID, token) {
				continue
			}
			c := slot{day: day, start: start, token: token}
			if _, avoid := s.avoid[token]; avoid {
				fallback = append(fallback, c)
			} else {
				preferred = append(preferred, c)
			}
		}
	}
	return preferred, fallback
}

// viable checks invariants 1-3 (and 5 when a room is involved) for one
// requirement at one slot, returning the room to book (0 when none needed).
func (s *Solver) viable(req Requirement, token string) (uint, bool) {
	if s.occupancy.GroupBusy(token, req.GroupID) {
		return 0, false
	}
	if s.occupancy.TeacherBusy(token, *req.TeacherID) {
		return 0, false
	}
	return s.pickRoom(req, token)
}

// pickRoom resolves the room constraint at a slot. A preferred room is the
// only one tried; otherwise the catalogue for the required type is scanned
// for a free room large enough for the group. No constraint books no room.
func (s *Solver) pickRoom(req Requirement, token string) (uint, bool) {
	size := s.groups[req.GroupID].Size
	if req.PreferredRoomID != nil {
		room, ok := s.rooms[*req.PreferredRoomID]
		if !ok || s.occupancy.RoomBusy(token, room.ID) || room.Capacity < size {
			return 0, false
		}
		return room.ID, true
	}
	if req.RoomType == "" {
		return 0, true
	}
	for _, room := range s.roomsByType[req.RoomType] {
		if s.occupancy.RoomBusy(token, room.ID) || room.Capacity < size {
			continue
		}
		return room.ID, true
	}
	return 0, false
}

// commit books the session in the occupancy index, pushes the undo handle on
// the trail and appends the assignment.
func (s *Solver) commit(req Requirement, c slot, roomID uint, placed *[]Assignment) {
	undo := s.occupancy.Commit(c.token, req.GroupID, *req.TeacherID, roomID)
	s.trail = append(s.trail, undo)
	a := Assignment{
		Day:       c.day,
		Start:     c.start,
		GroupID:   req.GroupID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
	}
	if roomID != 0 {
		id := roomID
		a.RoomID = &id
	}
	*placed = append(*placed, a)
}

// unwind releases trail entries down to the given mark, newest first.
func (s *Solver) unwind(mark int) {
	for len(s.trail) > mark {
		last := len(s.trail) - 1
		s.occupancy.Release(s.trail[last])
		s.trail = s.trail[:last]
	}
}
