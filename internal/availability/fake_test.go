// AngelaMos | 2026
// fake_test.go

package availability

import (
	"context"
	"sync"
	"time"
)

// fakeRepository returns every stored slot from ListAvailable regardless of
// the window, so the service's own filtering is what tests observe.
type fakeRepository struct {
	mu    sync.Mutex
	slots []Slot
	err   error
}

func (f *fakeRepository) ListAvailable(
	_ context.Context,
	_, _ time.Time,
) ([]Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := make([]Slot, len(f.slots))
	copy(out, f.slots)
	return out, nil
}

func (f *fakeRepository) CreateMany(
	_ context.Context,
	slots []Slot,
) ([]Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var created []Slot
	for _, s := range slots {
		if f.exists(s.Date, s.Time) {
			continue
		}
		f.slots = append(f.slots, s)
		created = append(created, s)
	}
	return created, nil
}

func (f *fakeRepository) Claim(
	_ context.Context,
	start, end time.Time,
	label string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.slots {
		if f.slots[i].Time == label && f.slots[i].InWindow(start, end) {
			if !f.slots[i].Available {
				return ErrSlotUnavailable
			}
			f.slots[i].Available = false
			return nil
		}
	}
	return ErrNoSlot
}

func (f *fakeRepository) CountOpen(_ context.Context, from time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, s := range f.slots {
		if s.Available && !s.Date.Before(from) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) exists(date time.Time, label string) bool {
	for _, s := range f.slots {
		if s.Date.Equal(date) && s.Time == label {
			return true
		}
	}
	return false
}
