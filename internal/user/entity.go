// AngelaMos | 2026
// entity.go

package user

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	PhoneNumber  string         `db:"phone_number"`
	Role         string         `db:"role"`
	Tier         string         `db:"tier"`
	BookingIDs   pq.StringArray `db:"booking_ids"`
	EventIDs     pq.StringArray `db:"event_ids"`
	TokenVersion int            `db:"token_version"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	TierFree     = "free"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

var (
	roles = []string{RoleMember, RoleAdmin}
	tiers = []string{TierFree, TierSilver, TierGold, TierPlatinum}
)

func ValidRole(role string) bool {
	return slices.Contains(roles, role)
}

func ValidTier(tier string) bool {
	return slices.Contains(tiers, tier)
}
