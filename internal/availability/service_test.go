// AngelaMos | 2026
// service_test.go

package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAvailableReturnsOnlyOpenSlotsForTheDay(t *testing.T) {
	repo := &fakeRepository{slots: []Slot{
		{ID: "s2", Date: day(2024, 7, 15), Time: "10:00", Available: false},
		{ID: "s1", Date: day(2024, 7, 15), Time: "09:00", Available: true},
		{ID: "s3", Date: day(2024, 7, 16), Time: "08:00", Available: true},
	}}
	svc := NewService(repo, time.UTC)

	slots, err := svc.Available(context.Background(), "2024-07-15")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s1", slots[0].ID)
	assert.Equal(t, "09:00", slots[0].Time)
}

func TestAvailableRequiresDate(t *testing.T) {
	svc := NewService(&fakeRepository{}, time.UTC)

	_, err := svc.Available(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAvailableWrapsStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&fakeRepository{err: boom}, time.UTC)

	_, err := svc.Available(context.Background(), "2024-07-15")
	require.ErrorIs(t, err, boom)
}

func TestAvailableProperty(t *testing.T) {
	labels := []string{"06:30", "07:00", "08:10", "09:00", "10:00", "12:40", "16:20"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		slots := make([]Slot, n)
		for i := range slots {
			offset := rapid.IntRange(-2, 2).Draw(t, "offset")
			slots[i] = Slot{
				ID:        rapid.StringMatching(`[a-z]{6}`).Draw(t, "id"),
				Date:      day(2024, 7, 15).AddDate(0, 0, offset),
				Time:      rapid.SampledFrom(labels).Draw(t, "time"),
				Available: rapid.Bool().Draw(t, "available"),
			}
		}

		svc := NewService(&fakeRepository{slots: slots}, time.UTC)
		got, err := svc.Available(context.Background(), "2024-07-15")
		require.NoError(t, err)

		start, end := day(2024, 7, 15), day(2024, 7, 16)
		want := 0
		for i := range slots {
			if slots[i].Available && slots[i].InWindow(start, end) {
				want++
			}
		}
		assert.Len(t, got, want)

		for i := range got {
			assert.True(t, got[i].Available)
			assert.True(t, got[i].InWindow(start, end))
			if i > 0 {
				assert.LessOrEqual(t, got[i-1].Time, got[i].Time)
			}
		}
	})
}

func TestCreateSlotsSkipsDuplicates(t *testing.T) {
	repo := &fakeRepository{slots: []Slot{
		{ID: "old", Date: day(2024, 7, 15), Time: "09:00", Available: false},
	}}
	svc := NewService(repo, time.UTC)

	created, err := svc.CreateSlots(context.Background(), CreateSlotsRequest{
		Date:  "2024-07-15",
		Times: []string{"09:00", "09:10", "09:10", "09:20"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "09:10", created[0].Time)
	assert.Equal(t, "09:20", created[1].Time)
	assert.Len(t, repo.slots, 3)
	assert.False(t, repo.slots[0].Available)
}

func TestCreateSlotsRejectsBadLabel(t *testing.T) {
	svc := NewService(&fakeRepository{}, time.UTC)

	_, err := svc.CreateSlots(context.Background(), CreateSlotsRequest{
		Date:  "2024-07-15",
		Times: []string{"9am"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestOpenFromCountsTodayOnward(t *testing.T) {
	repo := &fakeRepository{slots: []Slot{
		{Date: day(2024, 7, 14), Time: "09:00", Available: true},
		{Date: day(2024, 7, 15), Time: "09:00", Available: true},
		{Date: day(2024, 7, 15), Time: "10:00", Available: false},
		{Date: day(2024, 7, 20), Time: "09:00", Available: true},
	}}
	svc := NewService(repo, time.UTC)

	n, err := svc.OpenFrom(context.Background(), time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetAvailabilityHandler(t *testing.T) {
	repo := &fakeRepository{slots: []Slot{
		{ID: "s1", Date: day(2024, 7, 15), Time: "09:00", Available: true},
		{ID: "s2", Date: day(2024, 7, 15), Time: "10:00", Available: false},
	}}
	h := NewHandler(NewService(repo, time.UTC))

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	t.Run("returns open slots", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability?date=2024-07-15", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool           `json:"success"`
			Data    []SlotResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Success)
		require.Len(t, body.Data, 1)
		assert.Equal(t, SlotResponse{ID: "s1", Date: "2024-07-15", Time: "09:00", Available: true}, body.Data[0])
	})

	t.Run("missing date is a validation error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), core.CodeValidation)
	})
}

func TestCreateSlotsHandlerValidates(t *testing.T) {
	h := NewHandler(NewService(&fakeRepository{}, time.UTC))
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	h.RegisterAdminRoutes(r, pass, pass)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/slots",
		strings.NewReader(`{"date":"2024-07-15","times":["25:00"]}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/slots",
		strings.NewReader(`{"date":"2024-07-15","times":["09:00","09:10"]}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
