package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secreto123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secreto123" {
		t.Fatalf("password stored in plain text")
	}
	if err := CheckPassword("secreto123", hash); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword("otra", hash); err == nil {
		t.Fatalf("wrong password accepted")
	}
}

func TestIsValidRole(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{role: "admin", want: true},
		{role: "teacher", want: true},
		{role: "Admin", want: false},
		{role: "student", want: false},
		{role: "", want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.role, func(t *testing.T) {
			if got := IsValidRole(tc.role); got != tc.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tc.role, got, tc.want)
			}
		})
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "png"}
	cases := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "allowed lower", filename: "logo.png", want: true},
		{name: "allowed upper", filename: "LOGO.JPG", want: true},
		{name: "not allowed", filename: "doc.pdf", want: false},
		{name: "no extension", filename: "logo", want: false},
		{name: "empty", filename: "", want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidFileExtension(tc.filename, allowed); got != tc.want {
				t.Errorf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.want)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims whitespace", input: "  Matemática  ", want: "Matemática"},
		{name: "strips null bytes", input: "a\x00b", want: "ab"},
		{name: "clean passthrough", input: "1° A", want: "1° A"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input); got != tc.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(a))
	}
	b, _ := GenerateRandomString(16)
	if a == b {
		t.Fatalf("two random strings collided")
	}
}
