package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/httpx"
)

// Handler manages health record endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     authz.Gate
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers health record routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceHealthMetrics))
		r.Post("/metrics", h.recordMetric)
		r.Get("/members/{id}/metrics", h.listMetrics)
		r.Put("/metrics/{id}", h.updateMetric)
		r.Delete("/metrics/{id}", h.deleteMetric)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceCoachObservations))
		r.Post("/members/{id}/observations", h.addObservation)
		r.Get("/members/{id}/observations", h.listObservations)
		r.Put("/observations/{id}", h.updateObservation)
		r.Delete("/observations/{id}", h.deleteObservation)
	})
}

type metricRequest struct {
	MemberID   string  `json:"memberId" validate:"required,uuid4"`
	WeightKg   float64 `json:"weightKg" validate:"required,gt=0"`
	HeightCm   float64 `json:"heightCm" validate:"required,gt=0"`
	BodyFatPct float64 `json:"bodyFatPct" validate:"min=0,max=100"`
	CoachNotes string  `json:"coachNotes"`
}

type updateMetricRequest struct {
	WeightKg   float64 `json:"weightKg" validate:"required,gt=0"`
	HeightCm   float64 `json:"heightCm" validate:"required,gt=0"`
	BodyFatPct float64 `json:"bodyFatPct" validate:"min=0,max=100"`
	CoachNotes string  `json:"coachNotes"`
}

type observationRequest struct {
	Note string `json:"note" validate:"required"`
}

func (h *Handler) recordMetric(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	created, err := h.service.RecordMetric(r.Context(), *caller, Metric{
		MemberID:   req.MemberID,
		RecordedAt: time.Now().UTC(),
		WeightKg:   req.WeightKg,
		HeightCm:   req.HeightCm,
		BodyFatPct: req.BodyFatPct,
		CoachNotes: req.CoachNotes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listMetrics(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	metrics, err := h.service.ListMetrics(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

func (h *Handler) updateMetric(w http.ResponseWriter, r *http.Request) {
	var req updateMetricRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	updated, err := h.service.UpdateMetric(r.Context(), *caller, Metric{
		ID:         chi.URLParam(r, "id"),
		WeightKg:   req.WeightKg,
		HeightCm:   req.HeightCm,
		BodyFatPct: req.BodyFatPct,
		CoachNotes: req.CoachNotes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteMetric(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	if err := h.service.DeleteMetric(r.Context(), *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addObservation(w http.ResponseWriter, r *http.Request) {
	var req observationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	created, err := h.service.AddObservation(r.Context(), *caller, chi.URLParam(r, "id"), req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listObservations(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	observations, err := h.service.ListObservations(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"observations": observations})
}

func (h *Handler) updateObservation(w http.ResponseWriter, r *http.Request) {
	var req observationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	updated, err := h.service.UpdateObservation(r.Context(), *caller, chi.URLParam(r, "id"), req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteObservation(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	if err := h.service.DeleteObservation(r.Context(), *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
