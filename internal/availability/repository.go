// AngelaMos | 2026
// repository.go

package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

const slotColumns = `id, date, time, available, created_at`

type Repository interface {
	ListAvailable(ctx context.Context, start, end time.Time) ([]Slot, error)
	CreateMany(ctx context.Context, slots []Slot) ([]Slot, error)
	Claim(ctx context.Context, start, end time.Time, label string) error
	CountOpen(ctx context.Context, from time.Time) (int, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts either the pool or a transaction. Claim only
// holds its row lock when called on a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListAvailable(
	ctx context.Context,
	start, end time.Time,
) ([]Slot, error) {
	query := `SELECT ` + slotColumns + `
		FROM slots
		WHERE date >= $1 AND date < $2 AND available = TRUE
		ORDER BY time ASC`

	var slots []Slot
	if err := r.db.SelectContext(ctx, &slots, query, start, end); err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	return slots, nil
}

// CreateMany inserts slots, skipping any (date, time) pair that already
// exists. Only the rows actually inserted are returned.
func (r *repository) CreateMany(
	ctx context.Context,
	slots []Slot,
) ([]Slot, error) {
	query := `
		INSERT INTO slots (id, date, time, available)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, time) DO NOTHING
		RETURNING ` + slotColumns

	created := make([]Slot, 0, len(slots))
	for i := range slots {
		var slot Slot
		err := r.db.GetContext(ctx, &slot, query,
			slots[i].ID,
			slots[i].Date,
			slots[i].Time,
			slots[i].Available,
		)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create slot %s: %w", slots[i].Time, err)
		}
		created = append(created, slot)
	}

	return created, nil
}

// Claim marks the slot at label on the day [start, end) as taken. It
// returns ErrNoSlot when no such slot exists and ErrSlotUnavailable when
// it was already taken.
func (r *repository) Claim(
	ctx context.Context,
	start, end time.Time,
	label string,
) error {
	var slot Slot
	err := r.db.GetContext(ctx, &slot, `SELECT `+slotColumns+`
		FROM slots
		WHERE date >= $1 AND date < $2 AND time = $3
		FOR UPDATE`, start, end, label)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSlot
	}
	if err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}

	if !slot.Available {
		return ErrSlotUnavailable
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE slots SET available = FALSE WHERE id = $1`, slot.ID)
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}

	return nil
}

func (r *repository) CountOpen(ctx context.Context, from time.Time) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM slots WHERE available = TRUE AND date >= $1`
	if err := r.db.GetContext(ctx, &total, query, from); err != nil {
		return 0, fmt.Errorf("count open slots: %w", err)
	}
	return total, nil
}
