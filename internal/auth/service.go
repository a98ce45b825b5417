// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrUserExists         = errors.New("user already exists")
)

const (
	defaultTier = "free"

	// expiredTokenGrace keeps expired sessions around for a day so a late
	// refresh still reads as expired rather than unknown.
	expiredTokenGrace = 24 * time.Hour
)

// Blacklist holds access tokens revoked before their expiry. It is
// satisfied by core.TokenBlacklist.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserProvider is the member store as the session layer sees it.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	sessions  Repository
	jwt       *JWTManager
	users     UserProvider
	blacklist Blacklist
	logger    *slog.Logger
}

// NewService wires the session layer. blacklist may be nil, in which case
// logout only revokes refresh tokens.
func NewService(
	sessions Repository,
	jwt *JWTManager,
	users UserProvider,
	blacklist Blacklist,
) *Service {
	return &Service{
		sessions:  sessions,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist,
		logger:    slog.Default().With("component", "auth"),
	}
}

// Register creates a member account. Username and email are both unique;
// a collision on either is reported as ErrUserExists.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	candidate := req.newUser(hash)

	taken, err := s.users.Exists(ctx, candidate.Email, candidate.Username)
	switch {
	case err != nil:
		return nil, fmt.Errorf("check existing user: %w", err)
	case taken:
		return nil, ErrUserExists
	}

	user, err := s.users.Create(ctx, candidate)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &RegisterResponse{
		Message: "User registered successfully.",
		User:    user.response(),
	}, nil
}

// Login accepts a username or an email. Unknown identifiers still pay for a
// password hash so both failure modes take the same time.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	var stored *string
	if user != nil {
		stored = &user.PasswordHash
	}

	ok, upgraded, err := core.VerifyPasswordTimingSafe(req.Password, stored)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if upgraded != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, upgraded); err != nil {
			s.logger.WarnContext(ctx, "password rehash not saved", "user_id", user.ID, "error", err)
		}
	}

	return s.issue(ctx, user, session{userAgent: userAgent, ip: ipAddress})
}

func (s *Service) findByIdentifier(ctx context.Context, identifier string) (*UserInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return s.users.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.users.GetByUsername(ctx, identifier)
}

// Refresh trades a live refresh token for a new pair in the same family.
// Presenting a token that was already traded revokes the whole family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.sessions.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh lookup: %w", err)
	}

	switch {
	case stored.IsUsed:
		return nil, s.reuseDetected(ctx, stored)
	case stored.IsRevoked():
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case stored.IsExpired():
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh owner: %w", err)
	}

	// The old token is spent before the new one exists, so two concurrent
	// refreshes cannot both succeed.
	next := uuid.NewString()
	if err := s.sessions.MarkAsUsed(ctx, stored.ID, next); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.reuseDetected(ctx, stored)
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return s.issue(ctx, user, session{
		id:        next,
		family:    stored.FamilyID,
		userAgent: userAgent,
		ip:        ipAddress,
	})
}

func (s *Service) reuseDetected(ctx context.Context, stored *RefreshToken) error {
	s.logger.WarnContext(ctx, "refresh token reuse, revoking family",
		"user_id", stored.UserID,
		"family_id", stored.FamilyID,
	)
	core.AddSpanEvent(ctx, "auth.token_reuse", attribute.String("family_id", stored.FamilyID))

	if err := s.sessions.RevokeByFamilyID(ctx, stored.FamilyID); err != nil {
		s.logger.ErrorContext(ctx, "revoke reused family", "family_id", stored.FamilyID, "error", err)
	}
	return ErrTokenReuse
}

// Logout blacklists the access token that made the request and, when given,
// revokes the caller's refresh token too.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if claims.JTI != "" {
		if err := s.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt); err != nil {
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}

	stored, err := s.sessions.FindByHash(ctx, core.HashToken(refreshToken))
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("logout lookup: %w", err)
	case stored.UserID != claims.UserID:
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.sessions.RevokeByID(ctx, stored.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token and bumps the token version so
// outstanding access tokens fail verification.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

func (s *Service) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, jti, time.Until(expiresAt))
}

func (s *Service) IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.blacklist == nil || jti == "" {
		return false, nil
	}
	return s.blacklist.IsRevoked(ctx, jti)
}

// VerifyAccessToken is the session check behind middleware.Authenticator:
// signature and claims first, then the logout blacklist, then the token
// version bumped by logout-all and password changes.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.IsAccessTokenBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	if err := s.ValidateTokenVersion(ctx, claims.UserID, claims.TokenVersion); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateTokenVersion fails with core.ErrTokenRevoked when the account is
// gone or has been logged out everywhere since the token was minted.
func (s *Service) ValidateTokenVersion(ctx context.Context, userID string, version int) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("token owner gone: %w", core.ErrTokenRevoked)
	}
	if err != nil {
		return fmt.Errorf("token owner: %w", err)
	}
	if version < user.TokenVersion {
		return fmt.Errorf("stale token version: %w", core.ErrTokenRevoked)
	}
	return nil
}

func (s *Service) GetActiveSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	tokens, err := s.sessions.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, len(tokens))
	for i := range tokens {
		out[i] = tokens[i].Session()
	}
	return out, nil
}

// RevokeSession ends one of the caller's own sessions.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	stored, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if stored.UserID != userID {
		return fmt.Errorf("session %s: %w", sessionID, core.ErrForbidden)
	}
	return s.sessions.RevokeByID(ctx, sessionID)
}

// PurgeExpiredSessions deletes refresh tokens that expired over a day ago.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, expiredTokenGrace)
}

// ChangePassword requires the current password and then logs the member out
// everywhere.
func (s *Service) ChangePassword(ctx context.Context, userID, current, replacement string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	ok, err := core.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(replacement)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.response()
	return &resp, nil
}

// session describes the refresh token row about to be written. A zero id or
// family starts a fresh one.
type session struct {
	id        string
	family    string
	userAgent string
	ip        string
}

func (s *Service) issue(ctx context.Context, user *UserInfo, sess session) (resp *AuthResponse, err error) {
	ctx, end := core.StartSpan(ctx, "auth.issue_session", attribute.String("user.id", user.ID))
	defer func() { end(err) }()

	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Tier:         user.Tier,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(sess.family)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	if sess.id == "" {
		sess.id = uuid.NewString()
	}
	row := &RefreshToken{
		ID:        sess.id,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: sess.userAgent,
		IPAddress: sess.ip,
	}
	if err := s.sessions.Create(ctx, row); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   user.response(),
		Tokens: newTokenResponse(access, refresh.Token, s.jwt.AccessTokenTTL()),
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
