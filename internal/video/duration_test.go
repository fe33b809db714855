package video

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"125", "2:05"},
		{"0", "0:00"},
		{"59", "0:59"},
		{"3600", "60:00"},
		{"2:45", "2:45"},
		{"", ""},
		{"N/A", "N/A"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.input); got != tt.expected {
			t.Errorf("FormatDuration(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
