package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKeyUsesLocalCalendarDay(t *testing.T) {
	// 01:30 UTC is still the previous day in Mexico City
	utc := time.Date(2026, 3, 5, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-04", DateKey(utc))
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"9am", 0, true},
		{"25:00", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 5, 0, 0, MexicoCityTZ)
	assert.Equal(t, 545, MinutesSinceMidnight(ts))
}
