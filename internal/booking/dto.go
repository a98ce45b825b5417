// AngelaMos | 2026
// dto.go

package booking

import (
	"time"

	"github.com/carterperez-dev/clubhouse/internal/availability"
)

// CreateBookingRequest is a tee-time reservation. Date may be YYYY-MM-DD
// or RFC3339; it is resolved to a calendar day in the club timezone.
type CreateBookingRequest struct {
	Date    string `json:"date"    validate:"required"`
	Time    string `json:"time"    validate:"required,datetime=15:04"`
	Players int    `json:"players" validate:"required,min=1"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Players   int       `json:"players"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func ToBookingResponse(b *Booking, loc *time.Location) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Date:      b.Date.In(loc).Format(availability.DateLayout),
		Time:      b.Time,
		Players:   b.Players,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

func ToBookingResponseList(bookings []Booking, loc *time.Location) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = ToBookingResponse(&bookings[i], loc)
	}
	return out
}
