// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/clubhouse/internal/auth"
	"github.com/carterperez-dev/clubhouse/internal/core"
)

// Service owns member records. It also serves as the auth package's
// UserProvider, so credentials and profile data live in one table.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func userInfo(u *User, err error) (*auth.UserInfo, error) {
	if err != nil {
		return nil, err
	}
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Tier:         u.Tier,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	return userInfo(s.repo.GetByID(ctx, id))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	return userInfo(s.FindByEmail(ctx, email))
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*auth.UserInfo, error) {
	return userInfo(s.repo.GetByUsername(ctx, username))
}

func (s *Service) Exists(ctx context.Context, email, username string) (bool, error) {
	return s.repo.ExistsByEmailOrUsername(ctx, strings.ToLower(email), username)
}

// Create stores a new member. Sign-up never grants admin.
func (s *Service) Create(ctx context.Context, nu auth.NewUser) (*auth.UserInfo, error) {
	if nu.Tier == "" {
		nu.Tier = TierFree
	}
	if !ValidTier(nu.Tier) {
		return nil, invalid("create member", "tier", nu.Tier)
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Username:     nu.Username,
		Email:        strings.ToLower(nu.Email),
		PasswordHash: nu.PasswordHash,
		PhoneNumber:  nu.PhoneNumber,
		Role:         RoleMember,
		Tier:         nu.Tier,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return userInfo(u, nil)
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// FindByEmail returns the full record, including booking and event refs.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// modify loads a member, applies change and writes the result back.
func (s *Service) modify(ctx context.Context, id string, change func(*User)) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	change(u)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	return s.modify(ctx, id, func(u *User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.PhoneNumber != nil {
			u.PhoneNumber = *req.PhoneNumber
		}
	})
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	if !ValidRole(role) {
		return nil, invalid("update role", "role", role)
	}
	return s.modify(ctx, id, func(u *User) { u.Role = role })
}

func (s *Service) UpdateUserTier(ctx context.Context, id, tier string) (*User, error) {
	if !ValidTier(tier) {
		return nil, invalid("update tier", "tier", tier)
	}
	return s.modify(ctx, id, func(u *User) { u.Tier = tier })
}

// UpdateTierByEmail changes the tier of the member owning email. Members
// may only change their own tier; admins may change anyone's.
func (s *Service) UpdateTierByEmail(
	ctx context.Context,
	requesterID, requesterRole, email, tier string,
) (*User, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("update tier: %w", core.ErrUnauthorized)
	}

	target, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.ID != requesterID && requesterRole != RoleAdmin {
		return nil, fmt.Errorf("update tier of %s: %w", target.ID, core.ErrForbidden)
	}

	return s.UpdateUserTier(ctx, target.ID, tier)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	switch {
	case params.Role != "" && !ValidRole(params.Role):
		return nil, 0, invalid("list members", "role", params.Role)
	case params.Tier != "" && !ValidTier(params.Tier):
		return nil, 0, invalid("list members", "tier", params.Tier)
	}
	return s.repo.List(ctx, params)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(ctx context.Context, userID string, req UpdateUserRequest) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}
	return s.UpdateUser(ctx, userID, req)
}

// CanDeleteUser allows self deletion, and lets admins remove members but
// never other admins.
func (s *Service) CanDeleteUser(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() {
		return fmt.Errorf("delete member %s: %w", targetID, core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return fmt.Errorf("delete admin %s: %w", targetID, core.ErrForbidden)
	}
	return nil
}

func invalid(op, field, value string) error {
	return fmt.Errorf("%s: invalid %s %q: %w", op, field, value, core.ErrInvalidInput)
}

var _ auth.UserProvider = (*Service)(nil)
