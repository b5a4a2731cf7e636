package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national spanish mobile", "612 345 678", "+34612345678"},
		{"already e164", "+34612345678", "+34612345678"},
		{"international with spaces", "+31 6 12345678", "+31612345678"},
		{"garbage returned trimmed", "  not-a-number  ", "not-a-number"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
