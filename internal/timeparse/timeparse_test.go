package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativeFormats(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"30m", now.Add(30 * time.Minute)},
		{"2h", now.Add(2 * time.Hour)},
		{"1d", now.Add(24 * time.Hour)},
		{"45 min", now.Add(45 * time.Minute)},
		{"3 hours", now.Add(3 * time.Hour)},
		{"2 days", now.Add(48 * time.Hour)},
		{"30 دقیقه", now.Add(30 * time.Minute)},
		{"2 ساعت", now.Add(2 * time.Hour)},
		{"1 روز", now.Add(24 * time.Hour)},
		{"  10M  ", now.Add(10 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseLargeValues(t *testing.T) {
	// No upper bound is applied
	now := time.Now()
	got, err := Parse("100000d", now)
	require.NoError(t, err)
	assert.True(t, got.After(now.Add(99999*24*time.Hour)))
}

func TestParseInvalidFormats(t *testing.T) {
	now := time.Now()

	for _, input := range []string{
		"",
		"soon",
		"m30",
		"30x",
		"at 5pm",
		"tomorrow",
		"h",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, now)
			assert.ErrorIs(t, err, ErrInvalidTimeFormat)
		})
	}
}
