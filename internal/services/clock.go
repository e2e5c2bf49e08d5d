package services

import (
	"fmt"
	"time"
)

// ClockTime resolves an "HH:MM" string against the planning day.
func ClockTime(day time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", hhmm, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// displayBucket returns the half-open 30-minute display window containing t:
// floor(minute-of-day / 30) * 30 to +30 minutes.
func displayBucket(t time.Time) (time.Time, time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	minutes := int(t.Sub(midnight).Minutes())

	start := midnight.Add(time.Duration(minutes/30*30) * time.Minute)
	return start, start.Add(30 * time.Minute)
}
