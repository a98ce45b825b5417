// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is a named backing service checked by readiness.
type Dependency struct {
	Name    string
	Checker Checker
}

type Handler struct {
	service  string
	deps     []Dependency
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(service string, deps ...Dependency) *Handler {
	h := &Handler{
		service: service,
		deps:    deps,
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// unavailable reports the lifecycle state that overrides any check result,
// or "" while the server is serving normally.
func (h *Handler) unavailable(checkReady bool) string {
	switch {
	case h.shutdown.Load():
		return "shutting_down"
	case checkReady && !h.ready.Load():
		return "not_ready"
	}
	return ""
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if state := h.unavailable(false); state != "" {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: state, Service: h.service})
		return
	}
	h.writeStatus(w, http.StatusOK, StatusResponse{Status: "ok", Service: h.service})
}

// Readiness checks every dependency concurrently. Any failure reports the
// whole service as degraded.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if state := h.unavailable(true); state != "" {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: state, Service: h.service})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Service: h.service, Checks: h.runChecks(ctx)}
	code := http.StatusOK
	if slices.ContainsFunc(resp.Checks, func(c HealthCheck) bool { return !c.Healthy }) {
		resp.Status, code = "degraded", http.StatusServiceUnavailable
	}

	h.writeStatus(w, code, resp)
}

func (h *Handler) runChecks(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = checkDependency(ctx, dep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // failures are recorded in checks

	return checks
}

func checkDependency(ctx context.Context, dep Dependency) HealthCheck {
	check := HealthCheck{Name: dep.Name}
	if dep.Checker == nil {
		check.Message = dep.Name + " checker not configured"
		return check
	}

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	check.Latency = time.Since(start).String()
	check.Healthy = err == nil
	if err != nil {
		check.Message = "ping failed"
	}
	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

type ReadinessResponse struct {
	Status  string        `json:"status"`
	Service string        `json:"service,omitempty"`
	Checks  []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
