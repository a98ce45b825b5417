// AngelaMos | 2026
// entity.go

package booking

import (
	"time"
)

const StatusConfirmed = "confirmed"

type Booking struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Date      time.Time `db:"date"`
	Time      string    `db:"time"`
	Players   int       `db:"players"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID == userID
}
