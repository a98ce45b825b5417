// AngelaMos | 2026
// handler.go

package availability

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/clubhouse/internal/core"
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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/availability", h.GetAvailability)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/slots", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/", h.CreateSlots)
	})
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.Available(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		core.WriteError(w, err, "slot")
		return
	}

	core.OK(w, ToSlotResponseList(slots, h.service.Location()))
}

func (h *Handler) CreateSlots(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	slots, err := h.service.CreateSlots(r.Context(), req)
	if err != nil {
		core.WriteError(w, err, "slot")
		return
	}

	core.Created(w, ToSlotResponseList(slots, h.service.Location()))
}
