// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/clubhouse/internal/admin"
	"github.com/carterperez-dev/clubhouse/internal/auth"
	"github.com/carterperez-dev/clubhouse/internal/availability"
	"github.com/carterperez-dev/clubhouse/internal/booking"
	"github.com/carterperez-dev/clubhouse/internal/config"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/course"
	"github.com/carterperez-dev/clubhouse/internal/event"
	"github.com/carterperez-dev/clubhouse/internal/health"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
	"github.com/carterperez-dev/clubhouse/internal/user"
	"github.com/carterperez-dev/clubhouse/migrations"
)

// app holds the club's connections and services for the life of the
// process.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	db    *core.Database
	redis *core.Redis
	keys  *auth.JWTManager

	users    *user.Service
	sessions *auth.Service
	slots    *availability.Service
	bookings *booking.Service
	events   *event.Service
	courses  *course.Service
}

// connect opens Postgres and Redis, applies the schema and loads the
// signing key. On error anything already opened is closed.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if a.db, err = core.NewDatabase(ctx, cfg.Database); err != nil {
		return nil, err
	}
	schema, err := migrations.Statements()
	if err != nil {
		return nil, err
	}
	if err = a.db.Migrate(ctx, schema); err != nil {
		return nil, err
	}
	logger.Info("database ready",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"schema_files", len(schema),
	)

	if a.redis, err = core.NewRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	logger.Info("redis ready", "namespace", a.redis.Namespace, "pool_size", cfg.Redis.PoolSize)

	if a.keys, err = auth.NewJWTManager(cfg.JWT); err != nil {
		return nil, err
	}
	logger.Info("signing key loaded", "alg", "ES256", "kid", a.keys.KeyID())

	a.wire()
	return a, nil
}

func (a *app) wire() {
	loc := a.cfg.Club.Location()

	a.users = user.NewService(user.NewRepository(a.db.DB))
	a.sessions = auth.NewService(auth.NewRepository(a.db.DB), a.keys, a.users, a.redis.Blacklist())
	a.slots = availability.NewService(availability.NewRepository(a.db.DB), loc)
	a.bookings = booking.NewService(booking.NewRepository(a.db.DB), a.users, a.cfg.Club)
	a.events = event.NewService(event.NewRepository(a.db.DB), a.users, loc)
	a.courses = course.NewService(
		course.NewRepository(a.db.DB),
		a.redis.Cache("courses"),
		a.cfg.Cache.CourseTTL,
		a.logger,
	)
}

// routes installs the middleware chain and every /v1 handler on r.
func (a *app) routes(r chi.Router, checks *health.Handler) {
	cfg := a.cfg

	r.Use(
		middleware.RequestID,
		middleware.Tracing,
		middleware.Logger(a.logger),
		middleware.Recoverer(a.logger),
		middleware.NewRateLimiter(a.redis.Client, middleware.RateLimitConfig{
			Limit:  middleware.PerWindow(cfg.RateLimit.Requests, cfg.RateLimit.Burst, cfg.RateLimit.Window),
			Prefix: a.redis.Key("ratelimit", "ip"),
		}).Handler,
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.CORS(cfg.CORS),
	)

	checks.RegisterRoutes(r)
	r.Get("/.well-known/jwks.json", a.keys.JWKSHandler())

	authenticator := middleware.Authenticator(a.sessions)
	optionalAuth := middleware.OptionalAuth(a.sessions)
	adminOnly := middleware.RequireAdmin
	tierLimit := middleware.TieredRateLimiter(
		a.redis.Client,
		a.redis.Key("ratelimit", "tier"),
		middleware.DefaultTiers,
	)
	registerLimit := middleware.NewRateLimiter(a.redis.Client, middleware.RateLimitConfig{
		Limit:  middleware.PerHour(20, 5),
		Prefix: a.redis.Key("ratelimit", "register"),
	}).Handler

	authHandler := auth.NewHandler(a.sessions)
	register := registerLimit(http.HandlerFunc(authHandler.Register))

	userHandler := user.NewHandler(a.users)
	slotHandler := availability.NewHandler(a.slots)
	courseHandler := course.NewHandler(a.courses)

	r.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, registerLimit)

		userHandler.RegisterRoutes(r, authenticator, register.ServeHTTP)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		slotHandler.RegisterRoutes(r)
		slotHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		booking.NewHandler(a.bookings).RegisterRoutes(r, authenticator, tierLimit)
		event.NewHandler(a.events).RegisterRoutes(r, authenticator, optionalAuth, adminOnly)

		courseHandler.RegisterRoutes(r)
		courseHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		a.adminHandler().RegisterRoutes(r, authenticator, adminOnly)
	})
}

func (a *app) adminHandler() *admin.Handler {
	return admin.NewHandler(admin.HandlerConfig{
		ClubName:   a.cfg.Club.Name,
		DBStats:    a.db.Stats,
		RedisStats: a.redis.PoolStats,
		DBPing:     a.db.Ping,
		RedisPing:  a.redis.Ping,
		Counters: admin.ClubCounters{
			Members:  a.users.CountUsers,
			Bookings: a.bookings.Count,
			Events:   a.events.Count,
			OpenSlots: func(ctx context.Context) (int, error) {
				return a.slots.OpenFrom(ctx, time.Now())
			},
		},
		Sessions: a.sessions,
	})
}

// sweepSessions deletes long-expired refresh tokens every interval until
// ctx is done.
func (a *app) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.sessions.PurgeExpiredSessions(ctx)
			switch {
			case err != nil:
				a.logger.Warn("session sweep failed", "error", err)
			case removed > 0:
				a.logger.Info("expired sessions purged", "removed", removed)
			}
		}
	}
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("database close", "error", err)
		}
	}
}
