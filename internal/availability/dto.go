// AngelaMos | 2026
// dto.go

package availability

import (
	"time"
)

type CreateSlotsRequest struct {
	Date  string   `json:"date"  validate:"required"`
	Times []string `json:"times" validate:"required,min=1,max=96,dive,datetime=15:04"`
}

type SlotResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

func ToSlotResponse(s *Slot, loc *time.Location) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		Date:      s.Date.In(loc).Format(DateLayout),
		Time:      s.Time,
		Available: s.Available,
	}
}

func ToSlotResponseList(slots []Slot, loc *time.Location) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i := range slots {
		out[i] = ToSlotResponse(&slots[i], loc)
	}
	return out
}
