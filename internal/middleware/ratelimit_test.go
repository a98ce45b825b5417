// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/v1/bookings":                                      "/v1/bookings",
		"/v1/bookings/6f1c2a3e-9d4b-4c1a-8e2f-0a1b2c3d4e5f": "/v1/bookings/{id}",
		"/v1/events/42/registrations":                       "/v1/events/{id}/registrations",
		"/":                                                 "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeEndpoint(in), in)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 192.0.2.44")
	assert.Equal(t, "192.0.2.44", ClientIP(req))
	assert.Equal(t, "ip:192.0.2.44", KeyByIP(req))
}

func TestKeyByUserAndEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/events/42/registrations", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "ip:10.0.0.9:POST:/v1/events/{id}/registrations", KeyByUserAndEndpoint(req))

	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: "u-1"}))
	assert.Equal(t, "user:u-1:POST:/v1/events/{id}/registrations", KeyByUserAndEndpoint(req))
}

func TestRateLimiterFallsBackToLocalBuckets(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerMinute(2, 2), Prefix: "test"})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", nil)
		req.RemoteAddr = addr
		return serve(h, req)
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:2").Code)

	rec := send("10.0.0.1:3")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1").Code, "other clients keep their own bucket")
}

func TestPerWindowSetsRefillPeriod(t *testing.T) {
	assert.Equal(t, 90*time.Second, PerWindow(10, 2, 90*time.Second).Period)

	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerWindow(1, 1, time.Hour), Prefix: "window"})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/availability", nil)
	req.RemoteAddr = "10.0.0.7:1"
	require.Equal(t, http.StatusNoContent, serve(h, req).Code)

	rec := serve(h, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 3000, "an hourly window refills far slower than a per-minute one")
}

func TestRateLimiterBypass(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      PerMinute(1, 1),
		BypassFunc: func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	h := rl.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	}
}

func TestTieredRateLimiter(t *testing.T) {
	tiers := map[string]TierConfig{
		"free": {RequestsPerMinute: 1, BurstSize: 1},
		"gold": {RequestsPerMinute: 3, BurstSize: 3},
	}
	limited := TieredRateLimiter(nil, "tier", tiers)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
	)

	as := func(userID, tier string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
		req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{UserID: userID, Tier: tier}))
		return serve(limited, req)
	}

	for range 3 {
		rec := as("u-gold", "gold")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gold", rec.Header().Get("X-RateLimit-Tier"))
	}
	assert.Equal(t, http.StatusTooManyRequests, as("u-gold", "gold").Code)

	rec := as("u-odd", "diamond")
	assert.Equal(t, "free", rec.Header().Get("X-RateLimit-Tier"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, as("u-odd", "diamond").Code)
}
