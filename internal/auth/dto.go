// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"
	"time"
)

const tokenTypeBearer = "Bearer"

type RegisterRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Username    string `json:"username"    validate:"required,alphanum,min=2,max=50"`
	Email       string `json:"email"       validate:"required,email,max=255"`
	Password    string `json:"password"    validate:"required,min=1,max=128"`
	PhoneNumber string `json:"phoneNumber" validate:"required,numeric,min=7,max=15"`
	Tier        string `json:"tier"        validate:"omitempty,oneof=free silver gold platinum"`
}

// newUser folds the request into the stored form: trimmed names, a
// lowercased email and the free tier when none was asked for.
func (r RegisterRequest) newUser(passwordHash string) NewUser {
	tier := r.Tier
	if tier == "" {
		tier = defaultTier
	}
	return NewUser{
		Name:         strings.TrimSpace(r.Name),
		Username:     strings.TrimSpace(r.Username),
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		PhoneNumber:  r.PhoneNumber,
		PasswordHash: passwordHash,
		Tier:         tier,
	}
}

// LoginRequest accepts either the username or the email as Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password"   validate:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func newTokenResponse(access, refresh string, ttl time.Duration) TokenResponse {
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(ttl / time.Second),
		ExpiresAt:    time.Now().Add(ttl),
	}
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}
