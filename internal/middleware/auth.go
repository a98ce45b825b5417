// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

const (
	RoleAdmin = "admin"

	claimsKey contextKey = "session_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*AccessTokenClaims, error)
}

// AccessTokenClaims is the identity a verified session resolves to. It is
// stored once on the request context and every accessor reads from it.
type AccessTokenClaims struct {
	UserID       string
	Email        string
	Role         string
	Tier         string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	claims, _ := ctx.Value(claimsKey).(*AccessTokenClaims)
	return claims
}

func claimOf(ctx context.Context, pick func(*AccessTokenClaims) string) string {
	if c := GetClaims(ctx); c != nil {
		return pick(c)
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	return claimOf(ctx, func(c *AccessTokenClaims) string { return c.UserID })
}

func GetUserEmail(ctx context.Context) string {
	return claimOf(ctx, func(c *AccessTokenClaims) string { return c.Email })
}

func GetUserRole(ctx context.Context) string {
	return claimOf(ctx, func(c *AccessTokenClaims) string { return c.Role })
}

func GetUserTier(ctx context.Context) string {
	return claimOf(ctx, func(c *AccessTokenClaims) string { return c.Tier })
}

// Authenticator rejects any request without a valid bearer session.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.Unauthorized(w, "missing authorization token")
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				writeSessionError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches a session when one verifies and otherwise lets the
// request through anonymously.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if claims, err := verifier.VerifyAccessToken(r.Context(), token); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		switch {
		case claims == nil:
			core.Unauthorized(w, "")
		case !claims.IsAdmin():
			core.Forbidden(w, "admin role required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func ExtractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeSessionError answers token problems with 401 and anything else,
// such as a blacklist or member store outage, with a logged 500.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}
