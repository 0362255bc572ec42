package scheduler

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidSlot is returned for day or period labels outside the school calendar.
var ErrInvalidSlot = errors.New("invalid timetable slot")

// PeriodMinutes is the fixed length of one teaching module.
const PeriodMinutes = 40

// DefaultRoomType is the room type a requirement gets when none is specified.
const DefaultRoomType = "Normal"

// Weekdays is the fixed teaching week, in display and search order.
var Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

// Periods is the ordered list of period start labels. The order drives the
// solver's slot iteration and the grid/export row layout; it has no effect on
// which schedules are feasible, only on which feasible one is found first.
var Periods = []string{
	"07:40", "08:20", "09:00", "09:40", "10:20", "11:00", "11:40", "12:20",
	"13:00", "13:40", "14:20", "15:00", "15:40", "16:20", "17:00",
	"17:40", "18:20", "19:00", "19:40", "20:20", "21:00", "21:40", "22:20",
}

var (
	dayIndex    = make(map[string]int, len(Weekdays))
	periodIndex = make(map[string]int, len(Periods))
)

func init() {
	for i, d := range Weekdays {
		dayIndex[d] = i
	}
	for i, p := range Periods {
		periodIndex[p] = i
	}
}

// DayIndex returns the position of a weekday in the teaching week.
func DayIndex(day string) (int, bool) {
	i, ok := dayIndex[day]
	return i, ok
}

// PeriodIndex returns the position of a period start label in the day.
func PeriodIndex(start string) (int, bool) {
	i, ok := periodIndex[start]
	return i, ok
}

// Token builds the canonical "Day-HH:MM" slot token used by availability
// sets, the avoid set and the occupancy index.
func Token(day, start string) string {
	return day + "-" + start
}

// PeriodRange converts a period start label into its display range
// ("07:40 a 08:20"). Minutes wrap mod 60 and the hour carries.
func PeriodRange(start string) (string, error) {
	if _, ok := periodIndex[start]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, start)
	}
	hour, _ := strconv.Atoi(start[:2])
	minutes, _ := strconv.Atoi(start[3:])
	endMinutes := (minutes + PeriodMinutes) % 60
	endHour := hour + (minutes+PeriodMinutes)/60
	return fmt.Sprintf("%s a %02d:%02d", start, endHour, endMinutes), nil
}

// ValidSlot reports whether (day, start) names a real slot in the calendar.
func ValidSlot(day, start string) bool {
	_, dayOK := dayIndex[day]
	_, periodOK := periodIndex[start]
	return dayOK && periodOK
}
