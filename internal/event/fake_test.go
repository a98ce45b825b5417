// AngelaMos | 2026
// fake_test.go

package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

type fakeStore struct {
	mu     sync.Mutex
	users  map[string]*user.User
	events []*Event
}

func newFakeStore(users ...*user.User) *fakeStore {
	s := &fakeStore{users: make(map[string]*user.User)}
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

func (s *fakeStore) Create(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	e.RegisteredUserIDs = []string{}
	stored := *e
	s.events = append(s.events, &stored)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id {
			return s.listing(e), nil
		}
	}
	return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
}

func (s *fakeStore) List(_ context.Context) ([]Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Listing, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *s.listing(e))
	}
	return out, nil
}

func (s *fakeStore) Register(_ context.Context, eventID, userID string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID != eventID {
			continue
		}
		if e.IsRegistered(userID) {
			return nil, fmt.Errorf("register for event: %w", ErrAlreadyRegistered)
		}
		if e.IsFull() {
			return nil, fmt.Errorf("register for event: %w", ErrEventFull)
		}
		var member *user.User
		for _, u := range s.users {
			if u.ID == userID {
				member = u
			}
		}
		if member == nil {
			return nil, fmt.Errorf("register for event: %w", ErrMemberGone)
		}
		e.RegisteredUserIDs = append(e.RegisteredUserIDs, userID)
		member.EventIDs = append(member.EventIDs, eventID)
		out := *e
		return &out, nil
	}
	return nil, fmt.Errorf("register for event: %w", core.ErrNotFound)
}

func (s *fakeStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), nil
}

func (s *fakeStore) listing(e *Event) *Listing {
	l := &Listing{Event: *e}
	l.RegisteredUserIDs = append([]string(nil), e.RegisteredUserIDs...)
	for _, u := range s.users {
		if u.ID == e.CreatedBy {
			l.CreatorName = u.Name
			l.CreatorEmail = u.Email
		}
	}
	return l
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
