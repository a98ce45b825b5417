// AngelaMos | 2026
// service_test.go

package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

const createBody = `{"title":"Club Open","description":"Annual stroke play",
	"date":"2024-08-01","start_time":"08:00","end_time":"16:00","capacity":2}`

func fixtures() *fakeStore {
	return newFakeStore(
		&user.User{ID: "u-admin", Name: "Ada Admin", Email: "admin@x.com", Role: user.RoleAdmin},
		&user.User{ID: "u-alice", Name: "Alice", Email: "alice@x.com", Role: user.RoleMember},
		&user.User{ID: "u-bob", Name: "Bob", Email: "bob@x.com", Role: user.RoleMember},
		&user.User{ID: "u-cy", Name: "Cy", Email: "cy@x.com", Role: user.RoleMember},
	)
}

func newTestRouter(store *fakeStore) http.Handler {
	verifier := fakeVerifier{
		"admin-token": {UserID: "u-admin", Email: "admin@x.com", Role: user.RoleAdmin},
		"alice-token": {UserID: "u-alice", Email: "alice@x.com", Role: user.RoleMember},
		"bob-token":   {UserID: "u-bob", Email: "bob@x.com", Role: user.RoleMember},
		"cy-token":    {UserID: "u-cy", Email: "cy@x.com", Role: user.RoleMember},
		"stale-token": {UserID: "u-gone", Email: "gone@x.com", Role: user.RoleAdmin},
	}

	svc := NewService(store, store, time.UTC)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(
		r,
		middleware.Authenticator(verifier),
		middleware.OptionalAuth(verifier),
		middleware.RequireAdmin,
	)
	return r
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestCreateEventByAdmin(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	rec := do(h, http.MethodPost, "/events", "admin-token", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created EventResponse
	decodeData(t, rec, &created)
	assert.Equal(t, "Club Open", created.Title)
	assert.Equal(t, "2024-08-01", created.Date)
	assert.Equal(t, 2, created.Capacity)
	assert.Equal(t, CreatorResponse{ID: "u-admin", Name: "Ada Admin", Email: "admin@x.com"}, created.CreatedBy)
	assert.Len(t, store.events, 1)
}

func TestCreateEventByMemberIsForbidden(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	rec := do(h, http.MethodPost, "/events", "alice-token", createBody)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.events)

	rec = do(h, http.MethodPost, "/events", "", createBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.events)
}

func TestCreateEventAdminRecordMissing(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	rec := do(h, http.MethodPost, "/events", "stale-token", createBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.events)
}

func TestCreateEventValidation(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	bodies := map[string]string{
		"missing title":    `{"description":"d","date":"2024-08-01","start_time":"08:00","end_time":"09:00","capacity":1}`,
		"zero capacity":    `{"title":"t","description":"d","date":"2024-08-01","start_time":"08:00","end_time":"09:00","capacity":0}`,
		"end before start": `{"title":"t","description":"d","date":"2024-08-01","start_time":"10:00","end_time":"09:00","capacity":1}`,
		"bad date":         `{"title":"t","description":"d","date":"soon","start_time":"08:00","end_time":"09:00","capacity":1}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/events", "admin-token", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, store.events)
}

func TestCreateEventServiceRejectsDemotedAdmin(t *testing.T) {
	store := fixtures()
	svc := NewService(store, store, time.UTC)

	_, err := svc.Create(context.Background(), "alice@x.com", CreateEventRequest{
		Title: "t", Description: "d", Date: "2024-08-01",
		StartTime: "08:00", EndTime: "09:00", Capacity: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, store.events)
}

func TestListEventsIsPublicWithCreator(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/events", "admin-token", createBody).Code)
	second := strings.Replace(createBody, "Club Open", "Junior Clinic", 1)
	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/events", "admin-token", second).Code)

	rec := do(h, http.MethodGet, "/events", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []EventResponse
	decodeData(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Club Open", list[0].Title)
	assert.Equal(t, "Junior Clinic", list[1].Title)
	assert.Equal(t, "Ada Admin", list[0].CreatedBy.Name)
	assert.Equal(t, "admin@x.com", list[0].CreatedBy.Email)
}

func TestRegisterEnforcesCapacity(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	rec := do(h, http.MethodPost, "/events", "admin-token", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created EventResponse
	decodeData(t, rec, &created)
	path := "/events/" + created.ID + "/registrations"

	rec = do(h, http.MethodPost, path, "alice-token", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var after EventResponse
	decodeData(t, rec, &after)
	assert.True(t, after.Registered)
	assert.Equal(t, 1, after.RegisteredCount)
	assert.Equal(t, 1, after.SeatsLeft)

	rec = do(h, http.MethodPost, path, "alice-token", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), core.CodeConflict)

	require.Equal(t, http.StatusCreated, do(h, http.MethodPost, path, "bob-token", "").Code)

	rec = do(h, http.MethodPost, path, "cy-token", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeEventFull)

	assert.Len(t, store.events[0].RegisteredUserIDs, 2)
	assert.Equal(t, []string{created.ID}, []string(store.users["alice@x.com"].EventIDs))
	assert.Empty(t, store.users["cy@x.com"].EventIDs)

	rec = do(h, http.MethodGet, "/events/"+created.ID, "bob-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var seen EventResponse
	decodeData(t, rec, &seen)
	assert.True(t, seen.Registered)
	assert.Equal(t, 0, seen.SeatsLeft)
}

func TestRegisterUnknownEvent(t *testing.T) {
	h := newTestRouter(fixtures())

	rec := do(h, http.MethodPost, "/events/nope/registrations", "alice-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterDeletedMemberReportsUser(t *testing.T) {
	store := fixtures()
	h := newTestRouter(store)

	rec := do(h, http.MethodPost, "/events", "admin-token", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created EventResponse
	decodeData(t, rec, &created)

	delete(store.users, "bob@x.com")

	rec = do(h, http.MethodPost, "/events/"+created.ID+"/registrations", "bob-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
	assert.NotContains(t, rec.Body.String(), "event not found")
	assert.Empty(t, store.events[0].RegisteredUserIDs)
}
