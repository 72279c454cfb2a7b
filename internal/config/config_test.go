package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"monday", time.Monday},
		{"Sunday", time.Sunday},
		{" FRIDAY ", time.Friday},
		{"", time.Monday},
		{"not-a-day", time.Monday},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseWeekday(tt.in), "input %q", tt.in)
	}
}
