// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

const (
	CodeRateLimited = "RATE_LIMITED"
	defaultTier     = "free"
)

// limitBackend prefers the shared Redis window and degrades to an
// in-process token bucket per key when Redis is unreachable.
type limitBackend struct {
	redis  *redis_rate.Limiter
	local  *localLimiter
	prefix string
}

func newLimitBackend(rdb *redis.Client, prefix string) *limitBackend {
	b := &limitBackend{local: newLocalLimiter(), prefix: prefix}
	if rdb != nil {
		b.redis = redis_rate.NewLimiter(rdb)
	}
	return b
}

func (b *limitBackend) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	if b.prefix != "" {
		key = b.prefix + ":" + key
	}

	if b.redis != nil {
		res, err := b.redis.Allow(ctx, key, limit)
		if err == nil {
			return res
		}
		slog.Warn("rate limiter degraded to local buckets", "error", err, "key", key)
	}

	return b.local.allow(key, limit)
}

type RateLimitConfig struct {
	Limit redis_rate.Limit
	// Prefix namespaces limiter keys in Redis.
	Prefix     string
	KeyFunc    func(*http.Request) string
	BypassFunc func(*http.Request) bool
}

type RateLimiter struct {
	backend *limitBackend
	config  RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		backend: newLimitBackend(rdb, cfg.Prefix),
		config:  cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		res := rl.backend.allow(r.Context(), rl.config.KeyFunc(r), rl.config.Limit)
		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP trusts the right-most X-Forwarded-For hop, which is the one the
// nearest proxy appended.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}
	return KeyByIP(r)
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":" + r.Method + ":" + normalizeEndpoint(r.URL.Path)
}

// normalizeEndpoint folds ids out of a path so /bookings/<uuid> and
// /bookings/<other uuid> share a bucket.
func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if uuid.Validate(part) == nil || isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf(`%d;t=%d`, max(res.Remaining, 0), int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Success: false,
		Error: &core.ErrorBody{
			Code:    CodeRateLimited,
			Message: fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		},
	})
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.limiters.Range(func(key, value any) bool {
			if entry, ok := value.(*limiterEntry); ok && entry.lastAccess.Load() < cutoff {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSec)
	now := time.Now().Unix()

	value, ok := l.limiters.Load(key)
	if !ok {
		fresh := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		fresh.lastAccess.Store(now)
		value, _ = l.limiters.LoadOrStore(key, fresh)
	}

	//nolint:forcetypeassert // only *limiterEntry is ever stored
	entry := value.(*limiterEntry)
	entry.lastAccess.Store(now)

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if entry.limiter.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(entry.limiter.Tokens()), 0)

	return res
}

type TierConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

func (t TierConfig) limit() redis_rate.Limit {
	return PerMinute(t.RequestsPerMinute, t.BurstSize)
}

// DefaultTiers sizes per-member budgets on the booking routes by
// membership tier.
var DefaultTiers = map[string]TierConfig{
	"free":     {RequestsPerMinute: 20, BurstSize: 5},
	"silver":   {RequestsPerMinute: 40, BurstSize: 10},
	"gold":     {RequestsPerMinute: 80, BurstSize: 20},
	"platinum": {RequestsPerMinute: 160, BurstSize: 40},
}

// TieredRateLimiter budgets each member per route by the tier in their
// session. Anonymous callers share the free budget keyed by IP.
func TieredRateLimiter(
	rdb *redis.Client,
	prefix string,
	tiers map[string]TierConfig,
) func(http.Handler) http.Handler {
	backend := newLimitBackend(rdb, prefix)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := GetUserTier(r.Context())
			cfg, ok := tiers[tier]
			if !ok {
				tier = defaultTier
				cfg = tiers[defaultTier]
			}

			key := KeyByIP(r)
			if GetUserID(r.Context()) != "" {
				key = KeyByUserAndEndpoint(r)
			}

			limit := cfg.limit()
			res := backend.allow(r.Context(), key, limit)

			w.Header().Set("X-RateLimit-Tier", tier)
			setRateLimitHeaders(w, res, limit)

			if res.Allowed == 0 {
				writeRateLimitExceeded(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PerWindow allows rate requests per window with the given burst.
func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

func PerHour(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Hour)
}
