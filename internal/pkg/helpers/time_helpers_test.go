package helpers

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"90m", 90 * time.Minute},
		{"0s", 0},
		{"", time.Minute},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		if got := ParseDuration("exam duration", tt.value, time.Minute); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
