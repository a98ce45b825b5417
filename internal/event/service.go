// AngelaMos | 2026
// service.go

package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/clubhouse/internal/availability"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

const CodeEventFull = "EVENT_FULL"

type UserResolver interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users UserResolver
	loc   *time.Location
}

func NewService(repo Repository, users UserResolver, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, users: users, loc: loc}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Create records an event authored by the admin behind adminEmail.
func (s *Service) Create(
	ctx context.Context,
	adminEmail string,
	req CreateEventRequest,
) (*Listing, error) {
	if adminEmail == "" {
		return nil, core.UnauthorizedError("")
	}

	if req.Capacity < 1 {
		return nil, core.ValidationError("capacity must be a positive integer")
	}
	if !availability.ValidTimeLabel(req.StartTime) ||
		!availability.ValidTimeLabel(req.EndTime) {
		return nil, core.ValidationError("start_time and end_time must be formatted as HH:MM")
	}
	if req.EndTime <= req.StartTime {
		return nil, core.ValidationError("end_time must be after start_time")
	}

	day, err := availability.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}

	admin, err := s.users.FindByEmail(ctx, adminEmail)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("admin")
		}
		return nil, fmt.Errorf("resolve event creator: %w", err)
	}
	if !admin.IsAdmin() {
		return nil, core.ForbiddenError("only admins can create events")
	}

	e := &Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Date:        day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		CreatedBy:   admin.ID,
	}

	storeCtx, end := core.StartSpan(ctx, "event.store",
		attribute.String("event.id", e.ID),
	)
	err = s.repo.Create(storeCtx, e)
	end(err)
	if err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "event.created",
		attribute.String("event.id", e.ID),
		attribute.Int("event.capacity", e.Capacity),
	)

	return &Listing{
		Event:        *e,
		CreatorName:  admin.Name,
		CreatorEmail: admin.Email,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]Listing, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// Register signs userID up for the event, subject to capacity.
func (s *Service) Register(ctx context.Context, eventID, userID string) (*Listing, error) {
	if userID == "" {
		return nil, core.UnauthorizedError("")
	}

	regCtx, end := core.StartSpan(ctx, "event.register",
		attribute.String("event.id", eventID),
	)
	_, err := s.repo.Register(regCtx, eventID, userID)
	end(err)
	switch {
	case errors.Is(err, ErrEventFull):
		return nil, core.ConflictError("event is at capacity", CodeEventFull)
	case errors.Is(err, ErrAlreadyRegistered):
		return nil, core.ConflictError("already registered for this event", core.CodeConflict)
	case errors.Is(err, ErrMemberGone):
		return nil, core.NotFoundError("user")
	case err != nil:
		return nil, err
	}

	core.AddSpanEvent(ctx, "event.registered",
		attribute.String("event.id", eventID),
	)

	return s.repo.GetByID(ctx, eventID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
