// AngelaMos | 2026
// entity.go

package event

import (
	"errors"
	"slices"
	"time"

	"github.com/lib/pq"
)

var (
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrMemberGone        = errors.New("registering member no longer exists")
)

type Event struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	Date              time.Time      `db:"date"`
	StartTime         string         `db:"start_time"`
	EndTime           string         `db:"end_time"`
	Capacity          int            `db:"capacity"`
	CreatedBy         string         `db:"created_by"`
	RegisteredUserIDs pq.StringArray `db:"registered_user_ids"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// Listing is an event joined with its creator's public details.
type Listing struct {
	Event
	CreatorName  string `db:"creator_name"`
	CreatorEmail string `db:"creator_email"`
}

func (e *Event) IsRegistered(userID string) bool {
	return slices.Contains(e.RegisteredUserIDs, userID)
}

func (e *Event) IsFull() bool {
	return len(e.RegisteredUserIDs) >= e.Capacity
}

func (e *Event) SeatsLeft() int {
	return max(e.Capacity-len(e.RegisteredUserIDs), 0)
}
