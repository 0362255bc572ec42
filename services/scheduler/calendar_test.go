package scheduler

import "testing"

func TestPeriodRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{
			name:  "first period",
			start: "07:40",
			want:  "07:40 a 08:20",
		},
		{
			name:  "hour carry",
			start: "08:20",
			want:  "08:20 a 09:00",
		},
		{
			name:  "afternoon",
			start: "13:40",
			want:  "13:40 a 14:20",
		},
		{
			name:  "last period",
			start: "22:20",
			want:  "22:20 a 23:00",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := PeriodRange(tc.start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPeriodRangeInvalid(t *testing.T) {
	if _, err := PeriodRange("08:00"); err == nil {
		t.Fatalf("expected error for a start time that is not a period")
	}
}

func TestValidSlot(t *testing.T) {
	tests := []struct {
		name  string
		day   string
		start string
		want  bool
	}{
		{name: "valid monday morning", day: "Lunes", start: "07:40", want: true},
		{name: "valid friday evening", day: "Viernes", start: "22:20", want: true},
		{name: "weekend", day: "Sábado", start: "07:40", want: false},
		{name: "unknown start", day: "Lunes", start: "07:45", want: false},
		{name: "empty", day: "", start: "", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidSlot(tc.day, tc.start); got != tc.want {
				t.Fatalf("ValidSlot(%q, %q) = %v, want %v", tc.day, tc.start, got, tc.want)
			}
		})
	}
}

func TestToken(t *testing.T) {
	if got := Token("Miércoles", "10:20"); got != "Miércoles-10:20" {
		t.Fatalf("unexpected token %q", got)
	}
}

func TestCalendarShape(t *testing.T) {
	if len(Weekdays) != 5 {
		t.Fatalf("expected 5 weekdays, got %d", len(Weekdays))
	}
	if len(Periods) != 23 {
		t.Fatalf("expected 23 periods, got %d", len(Periods))
	}
	if Periods[0] != "07:40" || Periods[len(Periods)-1] != "22:20" {
		t.Fatalf("unexpected period bounds: %s .. %s", Periods[0], Periods[len(Periods)-1])
	}

	// Every period must be an index round-trip
	for i, p := range Periods {
		idx, ok := PeriodIndex(p)
		if !ok || idx != i {
			t.Fatalf("PeriodIndex(%q) = %d, %v", p, idx, ok)
		}
	}
}
