// AngelaMos | 2026
// repository_test.go

package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/clubhouse/internal/dbtest"
)

func slotTimes(slots []Slot) []string {
	out := make([]string, len(slots))
	for i := range slots {
		out[i] = slots[i].Time
	}
	return out
}

func TestRepositoryListAvailableDayWindow(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	day := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateMany(ctx, []Slot{
		{ID: "s-0900", Date: day, Time: "09:00", Available: true},
		{ID: "s-1000", Date: day, Time: "10:00", Available: false},
		{ID: "s-0730", Date: day, Time: "07:30", Available: true},
		{ID: "s-prev", Date: day.AddDate(0, 0, -1), Time: "08:00", Available: true},
		{ID: "s-next", Date: day.AddDate(0, 0, 1), Time: "06:00", Available: true},
	})
	require.NoError(t, err)
	require.Len(t, created, 5)

	slots, err := repo.ListAvailable(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"07:30", "09:00"}, slotTimes(slots))
	for _, s := range slots {
		assert.True(t, s.InWindow(day, day.AddDate(0, 0, 1)), s.ID)
	}
}

func TestRepositoryCreateManySkipsExisting(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	day := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateMany(ctx, []Slot{{ID: "s-1", Date: day, Time: "09:00", Available: true}})
	require.NoError(t, err)

	created, err := repo.CreateMany(ctx, []Slot{
		{ID: "s-2", Date: day, Time: "09:00", Available: true},
		{ID: "s-3", Date: day, Time: "09:10", Available: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:10"}, slotTimes(created))

	open, err := repo.CountOpen(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, open)
}

func TestRepositoryClaim(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	day := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)
	_, err := repo.CreateMany(ctx, []Slot{{ID: "s-1", Date: day, Time: "09:00", Available: true}})
	require.NoError(t, err)

	require.NoError(t, repo.Claim(ctx, day, next, "09:00"))
	assert.ErrorIs(t, repo.Claim(ctx, day, next, "09:00"), ErrSlotUnavailable)
	assert.ErrorIs(t, repo.Claim(ctx, day, next, "12:00"), ErrNoSlot)

	slots, err := repo.ListAvailable(ctx, day, next)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
