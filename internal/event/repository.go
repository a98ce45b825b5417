// AngelaMos | 2026
// repository.go

package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

const eventColumns = `id, title, description, date, start_time, end_time,
		       capacity, created_by, registered_user_ids,
		       created_at, updated_at`

const listingQuery = `
	SELECT e.id, e.title, e.description, e.date, e.start_time, e.end_time,
	       e.capacity, e.created_by, e.registered_user_ids,
	       e.created_at, e.updated_at,
	       u.name AS creator_name, u.email AS creator_email
	FROM events e
	JOIN users u ON u.id = e.created_by`

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context) ([]Listing, error)
	// Register adds userID to the event and the event to the user's
	// registrations in one transaction, enforcing capacity under a row lock.
	Register(ctx context.Context, eventID, userID string) (*Event, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (id, title, description, date, start_time,
		                    end_time, capacity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING registered_user_ids, created_at, updated_at`

	err := r.db.GetContext(ctx, e, query,
		e.ID,
		e.Title,
		e.Description,
		e.Date,
		e.StartTime,
		e.EndTime,
		e.Capacity,
		e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	var l Listing
	err := r.db.GetContext(ctx, &l, listingQuery+` WHERE e.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &l, nil
}

func (r *repository) List(ctx context.Context) ([]Listing, error) {
	listings := []Listing{}
	query := listingQuery + ` ORDER BY e.created_at ASC, e.id ASC`
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return listings, nil
}

func (r *repository) Register(
	ctx context.Context,
	eventID, userID string,
) (*Event, error) {
	var e Event

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &e, `SELECT `+eventColumns+`
			FROM events
			WHERE id = $1
			FOR UPDATE`, eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}

		if e.IsRegistered(userID) {
			return ErrAlreadyRegistered
		}
		if e.IsFull() {
			return ErrEventFull
		}

		err = tx.GetContext(ctx, &e.RegisteredUserIDs, `
			UPDATE events
			SET registered_user_ids = array_append(registered_user_ids, $2),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING registered_user_ids`, eventID, userID)
		if err != nil {
			return err
		}

		err = user.NewRepository(tx).AppendEvent(ctx, userID, eventID)
		if errors.Is(err, core.ErrNotFound) {
			return ErrMemberGone
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("register for event: %w", err)
	}

	return &e, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}
