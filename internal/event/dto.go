// AngelaMos | 2026
// dto.go

package event

import (
	"time"

	"github.com/carterperez-dev/clubhouse/internal/availability"
)

type CreateEventRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Date        string `json:"date"        validate:"required"`
	StartTime   string `json:"start_time"  validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time"    validate:"required,datetime=15:04"`
	Capacity    int    `json:"capacity"    validate:"required,gt=0"`
}

type CreatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EventResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	Capacity        int             `json:"capacity"`
	RegisteredCount int             `json:"registered_count"`
	SeatsLeft       int             `json:"seats_left"`
	Registered      bool            `json:"registered"`
	CreatedBy       CreatorResponse `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToEventResponse renders l for viewerID, which may be empty for an
// anonymous caller.
func ToEventResponse(l *Listing, loc *time.Location, viewerID string) EventResponse {
	return EventResponse{
		ID:              l.ID,
		Title:           l.Title,
		Description:     l.Description,
		Date:            l.Date.In(loc).Format(availability.DateLayout),
		StartTime:       l.StartTime,
		EndTime:         l.EndTime,
		Capacity:        l.Capacity,
		RegisteredCount: len(l.RegisteredUserIDs),
		SeatsLeft:       l.SeatsLeft(),
		Registered:      viewerID != "" && l.IsRegistered(viewerID),
		CreatedBy: CreatorResponse{
			ID:    l.CreatedBy,
			Name:  l.CreatorName,
			Email: l.CreatorEmail,
		},
		CreatedAt: l.CreatedAt,
	}
}

func ToEventResponseList(listings []Listing, loc *time.Location, viewerID string) []EventResponse {
	out := make([]EventResponse, len(listings))
	for i := range listings {
		out[i] = ToEventResponse(&listings[i], loc, viewerID)
	}
	return out
}
