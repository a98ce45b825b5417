// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	AppendBooking(ctx context.Context, id, bookingID string) error
	AppendEvent(ctx context.Context, id, eventID string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Count(ctx context.Context) (int, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

const uniqueViolation = "23505"

const selectMember = `
	SELECT id, name, username, email, password_hash, phone_number,
		role, tier, booking_ids, event_ids, token_version,
		created_at, updated_at, deleted_at
	FROM users`

const (
	insertMember = `
		INSERT INTO users
			(id, name, username, email, password_hash, phone_number, role, tier)
		VALUES
			(:id, :name, :username, :email, :password_hash, :phone_number, :role, :tier)
		RETURNING created_at, updated_at, token_version`

	updateMember = `
		UPDATE users
		SET name = :name, phone_number = :phone_number, role = :role, tier = :tier,
			updated_at = NOW()
		WHERE id = :id AND deleted_at IS NULL
		RETURNING updated_at`

	// appendRef adds to an id array unless the value is already there, so a
	// retried link is a no-op.
	appendRef = `
		UPDATE users
		SET %[1]s = array_append(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND NOT ($2 = ANY(%[1]s))`

	hasRef = `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE id = $1 AND deleted_at IS NULL AND $2 = ANY(%s))`
)

type repository struct {
	db core.DBTX
}

// NewRepository accepts either the pool or a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query, args, err := r.db.BindNamed(insertMember, user)
	if err != nil {
		return fmt.Errorf("bind member insert: %w", err)
	}

	err = r.db.GetContext(ctx, user, query, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("member %s: %w", user.Username, core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, "username", username)
}

// getBy only ever receives one of the literal column names above.
func (r *repository) getBy(ctx context.Context, column, value string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u,
		selectMember+" WHERE "+column+" = $1 AND deleted_at IS NULL", value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("member by %s: %w", column, core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("member by %s: %w", column, err)
	}
	return &u, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query, args, err := r.db.BindNamed(updateMember, user)
	if err != nil {
		return fmt.Errorf("bind member update: %w", err)
	}

	err = r.db.GetContext(ctx, &user.UpdatedAt, query, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update member %s: %w", user.ID, core.ErrNotFound)
	case err != nil:
		return fmt.Errorf("update member %s: %w", user.ID, err)
	}
	return nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.touch(ctx, id, "password_hash = $2", passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.touch(ctx, id, "token_version = token_version + 1")
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.touch(ctx, id, "deleted_at = NOW()")
}

// touch applies set to one live member and bumps updated_at. A missing or
// deleted member is core.ErrNotFound.
func (r *repository) touch(ctx context.Context, id, set string, args ...any) error {
	query := "UPDATE users SET " + set + ", updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL"

	result, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update member %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update member %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *repository) AppendBooking(ctx context.Context, id, bookingID string) error {
	return r.appendRef(ctx, "booking_ids", id, bookingID)
}

func (r *repository) AppendEvent(ctx context.Context, id, eventID string) error {
	return r.appendRef(ctx, "event_ids", id, eventID)
}

func (r *repository) appendRef(ctx context.Context, column, id, ref string) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(appendRef, column), id, ref)
	if err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	if n == 1 {
		return nil
	}

	// Nothing changed: the member is gone or already holds ref.
	var present bool
	if err := r.db.GetContext(ctx, &present, fmt.Sprintf(hasRef, column), id, ref); err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	if !present {
		return fmt.Errorf("append %s: %w", column, core.ErrNotFound)
	}
	return nil
}

// filter accumulates WHERE clauses, numbering each ? placeholder as the
// next positional argument.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(f.args))))
}

func (f *filter) where() string {
	return " WHERE " + strings.Join(append([]string{"deleted_at IS NULL"}, f.clauses...), " AND ")
}

func (r *repository) List(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	params.Normalize()

	var f filter
	if params.Search != "" {
		f.add("(email ILIKE ? OR name ILIKE ? OR username ILIKE ?)", "%"+escapeLike(params.Search)+"%")
	}
	if params.Role != "" {
		f.add("role = ?", params.Role)
	}
	if params.Tier != "" {
		f.add("tier = ?", params.Tier)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+f.where(), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	n := len(f.args)
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		selectMember, f.where(), n+1, n+2)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, append(f.args, params.PageSize, params.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	return users, total, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users WHERE deleted_at IS NULL"); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

func (r *repository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE (email = $1 OR username = $2) AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, username); err != nil {
		return false, fmt.Errorf("check member exists: %w", err)
	}
	return exists, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
