package utils

import (
	"fmt"
	"time"
)

// MexicoCityTZ is the operational timezone for all field checkpoints.
var MexicoCityTZ = time.FixedZone("UTC-6", -6*60*60)

func LocalNow() time.Time {
	return time.Now().In(MexicoCityTZ)
}

// DateKey formats a timestamp as the calendar-day key used to partition
// attendance records.
func DateKey(t time.Time) string {
	return t.In(MexicoCityTZ).Format("2006-01-02")
}

func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", dateStr, MexicoCityTZ)
	return t
}

// MinutesSinceMidnight converts a timestamp to minutes since local midnight.
func MinutesSinceMidnight(t time.Time) int {
	local := t.In(MexicoCityTZ)
	return local.Hour()*60 + local.Minute()
}

// ParseClockTime parses an HH:mm string into minutes since midnight.
func ParseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, MexicoCityTZ); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
