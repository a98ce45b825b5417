// AngelaMos | 2026
// fake_test.go

package user

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
)

type fakeRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeRepository(users ...*User) *fakeRepository {
	f := &fakeRepository{users: make(map[string]*User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepository) find(match func(*User) bool) (*User, error) {
	for _, u := range f.users {
		if u.DeletedAt == nil && match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeRepository) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.find(func(x *User) bool {
		return x.Email == u.Email || x.Username == u.Username
	}); err == nil {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *User) bool { return u.ID == id })
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *User) bool { return u.Email == email })
}

func (f *fakeRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *User) bool { return u.Username == username })
}

func (f *fakeRepository) mutate(id string, fn func(*User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return core.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepository) Update(_ context.Context, user *User) error {
	return f.mutate(user.ID, func(u *User) {
		u.Name = user.Name
		u.PhoneNumber = user.PhoneNumber
		u.Role = user.Role
		u.Tier = user.Tier
	})
}

func (f *fakeRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return f.mutate(id, func(u *User) { u.PasswordHash = hash })
}

func (f *fakeRepository) IncrementTokenVersion(_ context.Context, id string) error {
	return f.mutate(id, func(u *User) { u.TokenVersion++ })
}

func (f *fakeRepository) AppendBooking(_ context.Context, id, bookingID string) error {
	return f.mutate(id, func(u *User) {
		if !slices.Contains(u.BookingIDs, bookingID) {
			u.BookingIDs = append(u.BookingIDs, bookingID)
		}
	})
}

func (f *fakeRepository) AppendEvent(_ context.Context, id, eventID string) error {
	return f.mutate(id, func(u *User) {
		if !slices.Contains(u.EventIDs, eventID) {
			u.EventIDs = append(u.EventIDs, eventID)
		}
	})
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	return f.mutate(id, func(u *User) {
		now := time.Now()
		u.DeletedAt = &now
	})
}

func (f *fakeRepository) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []User
	for _, u := range f.users {
		if u.DeletedAt != nil {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Tier != "" && u.Tier != params.Tier {
			continue
		}
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, len(out), nil
}

func (f *fakeRepository) Count(_ context.Context) (int, error) {
	_, total, err := f.List(context.Background(), ListUsersParams{})
	return total, err
}

func (f *fakeRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := f.find(func(u *User) bool { return u.Email == email || u.Username == username })
	return err == nil, nil
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
