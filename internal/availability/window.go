// AngelaMos | 2026
// window.go

package availability

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate reads a calendar date as YYYY-MM-DD, or as an RFC3339
// timestamp whose calendar day is taken in loc, and returns midnight of
// that day in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, core.ValidationError("date is required")
	}

	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, core.ValidationError(
			fmt.Sprintf("date %q must be formatted as YYYY-MM-DD", raw),
		)
	}

	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// DayWindow returns [start of day, start of next day) for day in loc.
// AddDate keeps the window a calendar day across DST changes, so it can be
// 23 or 25 hours long.
func DayWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	day = day.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ValidTimeLabel reports whether label is a 24h "HH:MM" time.
func ValidTimeLabel(label string) bool {
	if len(label) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, label)
	return err == nil
}
