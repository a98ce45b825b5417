// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

// Repository stores one row per issued refresh token. A session is the
// chain of rows sharing a family_id.
type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	FindByID(ctx context.Context, id string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, id, replacedByID string) error
	RevokeByID(ctx context.Context, id string) error
	RevokeByFamilyID(ctx context.Context, familyID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	GetActiveSessionsForUser(ctx context.Context, userID string) ([]RefreshToken, error)
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

const selectSession = `
	SELECT id, user_id, token_hash, family_id, expires_at, created_at,
		is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address
	FROM refresh_tokens`

const (
	insertSession = `
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, family_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	markSessionUsed = `
		UPDATE refresh_tokens
		SET is_used = true, used_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND is_used = false`

	revokeSessions = `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE revoked_at IS NULL AND `

	activeSessions = selectSession + `
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND is_used = false
			AND expires_at > NOW()
		ORDER BY created_at DESC`

	purgeSessions = `DELETE FROM refresh_tokens WHERE expires_at < $1`
)

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	err := r.db.GetContext(ctx, &token.CreatedAt, insertSession,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.FamilyID,
		token.ExpiresAt,
		token.UserAgent,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("store session %s: %w", token.ID, err)
	}
	return nil
}

func (r *repository) FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	return r.get(ctx, "token_hash", tokenHash)
}

func (r *repository) FindByID(ctx context.Context, id string) (*RefreshToken, error) {
	return r.get(ctx, "id", id)
}

// get looks a row up by one of the fixed columns above; column is never
// caller supplied.
func (r *repository) get(ctx context.Context, column, value string) (*RefreshToken, error) {
	var token RefreshToken
	err := r.db.GetContext(ctx, &token, selectSession+" WHERE "+column+" = $1", value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("session by %s: %w", column, core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("session by %s: %w", column, err)
	}
	return &token, nil
}

// MarkAsUsed fails with core.ErrNotFound when the token was already
// rotated, which is how concurrent refreshes of one token lose.
func (r *repository) MarkAsUsed(ctx context.Context, id, replacedByID string) error {
	n, err := r.exec(ctx, markSessionUsed, id, replacedByID)
	if err != nil {
		return fmt.Errorf("rotate session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("rotate session %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByID(ctx context.Context, id string) error {
	n, err := r.revoke(ctx, "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("revoke session %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByFamilyID(ctx context.Context, familyID string) error {
	_, err := r.revoke(ctx, "family_id", familyID)
	return err
}

func (r *repository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.revoke(ctx, "user_id", userID)
	return err
}

func (r *repository) revoke(ctx context.Context, column, value string) (int64, error) {
	n, err := r.exec(ctx, revokeSessions+column+" = $1", value)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions by %s: %w", column, err)
	}
	return n, nil
}

func (r *repository) GetActiveSessionsForUser(
	ctx context.Context,
	userID string,
) ([]RefreshToken, error) {
	var tokens []RefreshToken
	if err := r.db.SelectContext(ctx, &tokens, activeSessions, userID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return tokens, nil
}

// DeleteExpired removes tokens that expired more than olderThan ago and
// reports how many rows went.
func (r *repository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := r.exec(ctx, purgeSessions, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func (r *repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
