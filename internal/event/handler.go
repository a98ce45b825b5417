// AngelaMos | 2026
// handler.go

package event

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /events. Reads are public; optionalAuth lets the
// listing mark events the caller is registered for.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/events", func(r chi.Router) {
		r.With(optionalAuth).Get("/", h.List)
		r.With(optionalAuth).Get("/{eventID}", h.Get)

		r.With(authenticator, adminOnly).Post("/", h.Create)
		r.With(authenticator).Post("/{eventID}/registrations", h.Register)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	listing, err := h.service.Create(r.Context(), middleware.GetUserEmail(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "event")
		return
	}

	core.Created(w, ToEventResponse(listing, h.service.Location(), ""))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.List(r.Context())
	if err != nil {
		core.WriteError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponseList(
		listings,
		h.service.Location(),
		middleware.GetUserID(r.Context()),
	))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		core.WriteError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponse(
		listing,
		h.service.Location(),
		middleware.GetUserID(r.Context()),
	))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	listing, err := h.service.Register(r.Context(), chi.URLParam(r, "eventID"), userID)
	if err != nil {
		core.WriteError(w, err, "event")
		return
	}

	core.Created(w, ToEventResponse(listing, h.service.Location(), userID))
}
