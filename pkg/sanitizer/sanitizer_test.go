package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "Jane Doe", "Jane Doe"},
		{"leading and trailing", "  Jane Doe  ", "Jane Doe"},
		{"inner runs collapse", "Jane   \t Doe", "Jane Doe"},
		{"newlines collapse", "line one\n\nline two", "line one line two"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  a   b  ", "clean", "", " x "}
	for _, in := range inputs {
		once := TrimAndNormalize(in)
		twice := TrimAndNormalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"555 123 4567", "5551234567"},
		{"055-512-3456", "0555123456"},
		{"+972541234567", "+972541234567"},
		{"no digits", ""},
		{"5+5", "55"}, // plus only honored at the front
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
