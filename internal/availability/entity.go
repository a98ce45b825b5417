// AngelaMos | 2026
// entity.go

package availability

import (
	"errors"
	"time"
)

var (
	ErrSlotUnavailable = errors.New("slot already taken")
	ErrNoSlot          = errors.New("no slot for date and time")
)

// Slot is one bookable tee time. Date holds the start of the calendar day
// in the club timezone; Time is the "HH:MM" label within that day.
type Slot struct {
	ID        string    `db:"id"`
	Date      time.Time `db:"date"`
	Time      string    `db:"time"`
	Available bool      `db:"available"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Slot) InWindow(start, end time.Time) bool {
	return !s.Date.Before(start) && s.Date.Before(end)
}
