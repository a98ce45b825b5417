// AngelaMos | 2026
// repository.go

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/clubhouse/internal/availability"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

const bookingColumns = `id, user_id, date, time, players, status,
		       created_at, updated_at`

type Repository interface {
	// Create persists b and appends its id to the owner's booking list in
	// one transaction. With claimSlot set, the matching slot is taken in
	// the same transaction.
	Create(ctx context.Context, b *Booking, claimSlot bool) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListForUser(ctx context.Context, userID string) ([]Booking, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(
	ctx context.Context,
	b *Booking,
	claimSlot bool,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if claimSlot {
			err := availability.NewRepository(tx).Claim(
				ctx, b.Date, b.Date.AddDate(0, 0, 1), b.Time,
			)
			if err != nil && !errors.Is(err, availability.ErrNoSlot) {
				return fmt.Errorf("create booking: %w", err)
			}
		}

		query := `
			INSERT INTO bookings (id, user_id, date, time, players, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at`

		err := tx.GetContext(ctx, b, query,
			b.ID,
			b.UserID,
			b.Date,
			b.Time,
			b.Players,
			b.Status,
		)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if err := user.NewRepository(tx).AppendBooking(ctx, b.UserID, b.ID); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return &b, nil
}

// ListForUser follows the order of users.booking_ids.
func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.date, b.time, b.players, b.status,
		       b.created_at, b.updated_at
		FROM users u
		CROSS JOIN LATERAL unnest(u.booking_ids) WITH ORDINALITY AS ref(id, ord)
		JOIN bookings b ON b.id = ref.id
		WHERE u.id = $1 AND u.deleted_at IS NULL
		ORDER BY ref.ord`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings`); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return total, nil
}
