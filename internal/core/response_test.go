// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound, CodeNotFound, "booking not found"},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest, CodeValidation, "invalid input"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, "authentication required"},
		{"forbidden", ErrForbidden, http.StatusForbidden, CodeForbidden, "insufficient permissions"},
		{"conflict", ErrConflict, http.StatusConflict, CodeConflict, "resource conflict"},
		{"duplicate", DuplicateError("User already exists."), http.StatusBadRequest, CodeConflict, "User already exists."},
		{"app error", ConflictError("slot taken", "SLOT_TAKEN"), http.StatusConflict, "SLOT_TAKEN", "slot taken"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal, "internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err, "booking")

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeResponse(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.message, body.Error.Message)
		})
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("register: %w", DuplicateError("User already exists."))

	assert.True(t, IsAppError(err))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "User already exists.: duplicate key", appErr.Error())
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a", "b"}, 2, 2, 5)

	body := decodeResponse(t, rec)
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta)
	assert.Equal(t, Meta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, *body.Meta)
}

func TestCreatedAndNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"id": "b1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)

	rec = httptest.NewRecorder()
	NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestFormatValidationError(t *testing.T) {
	type request struct {
		Email   string   `json:"email"    validate:"required,email"`
		Players int      `json:"players"  validate:"min=1,max=4"`
		Tier    string   `json:"tier"     validate:"omitempty,oneof=free silver"`
		Date    string   `json:"date"     validate:"omitempty,datetime=2006-01-02"`
		Guests  []string `json:"guest_ids" validate:"dive,uuid"`
	}

	v := NewValidator()
	err := v.Struct(request{
		Email:   "not-an-email",
		Players: 5,
		Tier:    "diamond",
		Date:    "05/01/2026",
		Guests:  []string{"nope"},
	})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "players must be at most 4")
	assert.Contains(t, msg, "tier must be one of: free silver")
	assert.Contains(t, msg, "date must match the format 2006-01-02")
	assert.Contains(t, msg, "guest_ids[0] is invalid")

	assert.Equal(t, "invalid request", FormatValidationError(errors.New("boom")))
}

func TestRedisKeyNamespace(t *testing.T) {
	r := &Redis{Namespace: "clubhouse"}
	assert.Equal(t, "clubhouse:courses:list", r.Key("courses", "list"))
	assert.Equal(t, "clubhouse:ratelimit:ip", r.Key("ratelimit", "ip"))

	bare := &Redis{}
	assert.Equal(t, "blacklist", bare.Key("blacklist"))

	assert.Equal(t, "clubhouse:blacklist:jti-1", r.Blacklist().key("jti-1"))
	assert.Equal(t, "clubhouse:courses:all", r.Cache("courses").key("all"))
}
