package scheduler

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Availability is a teacher's declared teachable slots. It distinguishes a
// teacher who never restricted their hours (unrestricted) from one who
// selected an explicit token set, instead of inferring that from set
// emptiness.
type Availability struct {
	restricted bool
	slots      map[string]struct{}
}

// Unrestricted returns an availability that allows every slot.
func Unrestricted() Availability {
	return Availability{}
}

// RestrictedTo returns an availability limited to the given slot tokens.
// An empty token list degrades to unrestricted: a teacher with no tokens on
// file has declared nothing, not "never".
func RestrictedTo(tokens []string) Availability {
	if len(tokens) == 0 {
		return Unrestricted()
	}
	slots := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		slots[t] = struct{}{}
	}
	return Availability{restricted: true, slots: slots}
}

// Restricted reports whether the teacher limited their teachable slots.
func (a Availability) Restricted() bool {
	return a.restricted
}

// Allows reports whether the teacher can be scheduled at the given token.
func (a Availability) Allows(token string) bool {
	if !a.restricted {
		return true
	}
	_, ok := a.slots[token]
	return ok
}

// ParseAvailability decodes a raw JSON token array as stored on the teacher
// record. Malformed data fails open to unrestricted so one bad record cannot
// abort a whole generation run; the caller gets a non-nil error to log.
func ParseAvailability(raw []byte) (Availability, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Unrestricted(), nil
	}
	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return Unrestricted(), err
	}
	return RestrictedTo(tokens), nil
}

// AvailabilityIndex maps teacher IDs to their parsed availability. Teachers
// missing from the index are treated as unrestricted.
type AvailabilityIndex map[uint]Availability

// Allows reports whether the teacher may be scheduled at the token.
func (idx AvailabilityIndex) Allows(teacherID uint, token string) bool {
	a, ok := idx[teacherID]
	if !ok {
		return true
	}
	return a.Allows(token)
}

// TeacherRecord is the minimal teacher projection the solver needs.
type TeacherRecord struct {
	ID           uint
	Name         string
	Availability []byte
}

// BuildAvailabilityIndex parses every teacher's raw availability once per
// solver run.
func BuildAvailabilityIndex(teachers []TeacherRecord) AvailabilityIndex {
	idx := make(AvailabilityIndex, len(teachers))
	for _, t := range teachers {
		a, err := ParseAvailability(t.Availability)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"teacher_id": t.ID,
				"teacher":    t.Name,
			}).WithError(err).Warn("Malformed teacher availability, treating as unrestricted")
		}
		idx[t.ID] = a
	}
	return idx
}
