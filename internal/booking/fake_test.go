// AngelaMos | 2026
// fake_test.go

package booking

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/availability"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

type slotKey struct {
	day   string
	label string
}

// fakeStore plays both the booking repository and the member lookup so
// the user's booking list can be checked after each write.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*user.User
	bookings map[string]*Booking
	slots    map[slotKey]bool
	failLink bool
}

func newFakeStore(users ...*user.User) *fakeStore {
	s := &fakeStore{
		users:    make(map[string]*user.User),
		bookings: make(map[string]*Booking),
		slots:    make(map[slotKey]bool),
	}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	return u, nil
}

func (s *fakeStore) Create(_ context.Context, b *Booking, claimSlot bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{day: b.Date.Format(availability.DateLayout), label: b.Time}
	if claimSlot {
		if open, ok := s.slots[key]; ok && !open {
			return fmt.Errorf("create booking: %w", availability.ErrSlotUnavailable)
		}
	}

	owner := s.ownerByID(b.UserID)
	if owner == nil || s.failLink {
		return fmt.Errorf("create booking: %w", core.ErrNotFound)
	}

	if claimSlot {
		if _, ok := s.slots[key]; ok {
			s.slots[key] = false
		}
	}

	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	stored := *b
	s.bookings[b.ID] = &stored
	if !slices.Contains(owner.BookingIDs, b.ID) {
		owner.BookingIDs = append(owner.BookingIDs, b.ID)
	}
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("get booking: %w", core.ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (s *fakeStore) ListForUser(_ context.Context, userID string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := s.ownerByID(userID)
	if owner == nil {
		return []Booking{}, nil
	}
	out := make([]Booking, 0, len(owner.BookingIDs))
	for _, id := range owner.BookingIDs {
		if b, ok := s.bookings[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), nil
}

func (s *fakeStore) ownerByID(id string) *user.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type fakeVerifier map[string]*middleware.AccessTokenClaims

func (f fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return claims, nil
}
