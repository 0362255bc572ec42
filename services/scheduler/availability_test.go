package scheduler

import "testing"

func TestAvailabilityAllows(t *testing.T) {
	tests := []struct {
		name  string
		av    Availability
		token string
		want  bool
	}{
		{
			name:  "unrestricted allows anything",
			av:    Unrestricted(),
			token: "Lunes-07:40",
			want:  true,
		},
		{
			name:  "restricted allows listed token",
			av:    RestrictedTo([]string{"Lunes-07:40", "Martes-08:20"}),
			token: "Martes-08:20",
			want:  true,
		},
		{
			name:  "restricted rejects unlisted token",
			av:    RestrictedTo([]string{"Lunes-07:40"}),
			token: "Viernes-07:40",
			want:  false,
		},
		{
			name:  "empty token list degrades to unrestricted",
			av:    RestrictedTo(nil),
			token: "Jueves-10:20",
			want:  true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.av.Allows(tc.token); got != tc.want {
				t.Fatalf("Allows(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestRestrictedFlag(t *testing.T) {
	if Unrestricted().Restricted() {
		t.Fatalf("unrestricted availability reports restricted")
	}
	if RestrictedTo(nil).Restricted() {
		t.Fatalf("empty availability should not report restricted")
	}
	if !RestrictedTo([]string{"Lunes-07:40"}).Restricted() {
		t.Fatalf("availability with tokens should report restricted")
	}
}

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		restricted bool
	}{
		{name: "nil raw", raw: "", wantErr: false, restricted: false},
		{name: "json null", raw: "null", wantErr: false, restricted: false},
		{name: "empty array", raw: "[]", wantErr: false, restricted: false},
		{name: "token array", raw: `["Lunes-07:40"]`, wantErr: false, restricted: true},
		{name: "malformed fails open", raw: `{"not":"an array"}`, wantErr: true, restricted: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			av, err := ParseAvailability([]byte(tc.raw))
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if av.Restricted() != tc.restricted {
				t.Fatalf("restricted = %v, want %v", av.Restricted(), tc.restricted)
			}
		})
	}
}

func TestAvailabilityIndexMissingTeacher(t *testing.T) {
	idx := BuildAvailabilityIndex([]TeacherRecord{
		{ID: 1, Name: "Ana", Availability: []byte(`["Lunes-07:40"]`)},
	})

	if !idx.Allows(1, "Lunes-07:40") {
		t.Fatalf("listed token rejected")
	}
	if idx.Allows(1, "Martes-07:40") {
		t.Fatalf("unlisted token allowed for restricted teacher")
	}
	// A teacher absent from the index never blocks scheduling
	if !idx.Allows(99, "Viernes-22:20") {
		t.Fatalf("missing teacher should be unrestricted")
	}
}
