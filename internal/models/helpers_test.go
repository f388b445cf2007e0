package models

import "testing"

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uuid", "1a2b3c4d-0000-4000-8000-000000000000", "1a2b3c4d"},
		{"exactly eight", "abcdefgh", "abcdefgh"},
		{"shorter", "abc", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortID(tt.in)
			if got != tt.want {
				t.Errorf("ShortID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJobLabel(t *testing.T) {
	if got := JobLabel("1a2b3c4d-9999"); got != "JOB-1a2b3c4d" {
		t.Errorf("JobLabel() = %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pending", "PENDING"},
		{"generating_brief", "GENERATING BRIEF"},
		{"", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := StatusLabel(tt.in); got != tt.want {
				t.Errorf("StatusLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
