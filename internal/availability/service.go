// AngelaMos | 2026
// service.go

package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

type Service struct {
	repo Repository
	loc  *time.Location
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Available returns the open slots for the calendar day named by rawDate,
// ordered by time label.
func (s *Service) Available(ctx context.Context, rawDate string) ([]Slot, error) {
	day, err := ParseDate(rawDate, s.loc)
	if err != nil {
		return nil, err
	}

	start, end := DayWindow(day, s.loc)

	slots, err := s.repo.ListAvailable(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("availability for %s: %w", day.Format(DateLayout), err)
	}

	open := slots[:0]
	for i := range slots {
		if slots[i].Available && slots[i].InWindow(start, end) {
			open = append(open, slots[i])
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Time < open[j].Time
	})

	return open, nil
}

// CreateSlots seeds one available slot per distinct time label on the
// given day. Labels that already have a slot are left untouched.
func (s *Service) CreateSlots(
	ctx context.Context,
	req CreateSlotsRequest,
) ([]Slot, error) {
	day, err := ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Times))
	slots := make([]Slot, 0, len(req.Times))
	for _, label := range req.Times {
		if !ValidTimeLabel(label) {
			return nil, core.ValidationError(
				fmt.Sprintf("time %q must be formatted as HH:MM", label),
			)
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}

		slots = append(slots, Slot{
			ID:        uuid.New().String(),
			Date:      day,
			Time:      label,
			Available: true,
		})
	}

	created, err := s.repo.CreateMany(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("seed slots: %w", err)
	}

	return created, nil
}

// OpenFrom counts open slots from the start of today onward.
func (s *Service) OpenFrom(ctx context.Context, now time.Time) (int, error) {
	start, _ := DayWindow(now, s.loc)
	return s.repo.CountOpen(ctx, start)
}
