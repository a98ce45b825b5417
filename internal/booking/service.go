// AngelaMos | 2026
// service.go

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/clubhouse/internal/availability"
	"github.com/carterperez-dev/clubhouse/internal/config"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
	"github.com/carterperez-dev/clubhouse/internal/user"
)

const CodeSlotUnavailable = "SLOT_UNAVAILABLE"

// UserResolver finds the persisted member behind a session.
type UserResolver interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	repo       Repository
	users      UserResolver
	loc        *time.Location
	maxPlayers int
	claimSlots bool
}

func NewService(repo Repository, users UserResolver, club config.ClubConfig) *Service {
	maxPlayers := club.MaxPlayers
	if maxPlayers < 1 {
		maxPlayers = 4
	}

	return &Service{
		repo:       repo,
		users:      users,
		loc:        club.Location(),
		maxPlayers: maxPlayers,
		claimSlots: club.ClaimsSlots(),
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Create books a tee time for the member identified by email.
func (s *Service) Create(
	ctx context.Context,
	email string,
	req CreateBookingRequest,
) (*Booking, error) {
	if email == "" {
		return nil, core.UnauthorizedError("")
	}

	if req.Players < 1 || req.Players > s.maxPlayers {
		return nil, core.ValidationError(
			fmt.Sprintf("players must be between 1 and %d", s.maxPlayers),
		)
	}
	if !availability.ValidTimeLabel(req.Time) {
		return nil, core.ValidationError("time must be formatted as HH:MM")
	}

	day, err := availability.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, err
	}

	member, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("resolve booking owner: %w", err)
	}

	b := &Booking{
		ID:      uuid.New().String(),
		UserID:  member.ID,
		Date:    day,
		Time:    req.Time,
		Players: req.Players,
		Status:  StatusConfirmed,
	}

	storeCtx, end := core.StartSpan(ctx, "booking.store",
		attribute.String("booking.id", b.ID),
		attribute.Bool("booking.claim_slot", s.claimSlots),
	)
	err = s.repo.Create(storeCtx, b, s.claimSlots)
	end(err)
	if err != nil {
		if errors.Is(err, availability.ErrSlotUnavailable) {
			return nil, core.ConflictError(
				fmt.Sprintf("tee time %s on %s is already taken",
					b.Time, day.Format(availability.DateLayout)),
				CodeSlotUnavailable,
			)
		}
		return nil, err
	}

	core.AddSpanEvent(ctx, "booking.created",
		attribute.String("booking.id", b.ID),
		attribute.String("booking.date", day.Format(availability.DateLayout)),
		attribute.String("booking.time", b.Time),
		attribute.Int("booking.players", b.Players),
	)

	return b, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Get returns a booking to its owner or to an admin.
func (s *Service) Get(
	ctx context.Context,
	id, requesterID, requesterRole string,
) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !b.OwnedBy(requesterID) && requesterRole != middleware.RoleAdmin {
		return nil, core.ForbiddenError("booking belongs to another member")
	}

	return b, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
