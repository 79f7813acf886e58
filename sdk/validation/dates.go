package validation

import (
	"fmt"
	"time"
)

// ParseFlexibleDate tries to parse a date string using multiple common formats.
// Browser clients send ISO timestamps (Date.toISOString); forms send YYYY-MM-DD.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano, // 2026-01-15T10:00:00.000Z
		time.RFC3339,
		"2006-01-02T15:04:05", // datetime-local input
		time.DateOnly,
		"2006/01/02",
		"01/02/2006", // MM/DD/YYYY
		"02.01.2006", // DD.MM.YYYY
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
