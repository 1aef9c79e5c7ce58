package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/httpx"
)

// Handler manages studio settings endpoints.
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

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceSettings))
		r.Get("/", h.get)
		r.Put("/", h.update)
	})
}

type updateRequest struct {
	StudioName         string `json:"studioName" validate:"required"`
	OpeningHour        int    `json:"openingHour" validate:"min=0,max=23"`
	ClosingHour        int    `json:"closingHour" validate:"min=1,max=24"`
	CheckInWindowHours int    `json:"checkInWindowHours" validate:"min=1,max=12"`
	MonthlyDueDay      int    `json:"monthlyDueDay" validate:"min=1,max=28"`
}

func settingsResponse(s Settings) map[string]any {
	return map[string]any{
		"studioName":         s.StudioName,
		"openingHour":        s.OpeningHour,
		"closingHour":        s.ClosingHour,
		"checkInWindowHours": s.CheckInWindowHours,
		"monthlyDueDay":      s.MonthlyDueDay,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	current, err := h.service.Get(r.Context(), *caller)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settingsResponse(current))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	saved, err := h.service.Update(r.Context(), *caller, Settings{
		StudioName:         req.StudioName,
		OpeningHour:        req.OpeningHour,
		ClosingHour:        req.ClosingHour,
		CheckInWindowHours: req.CheckInWindowHours,
		MonthlyDueDay:      req.MonthlyDueDay,
	})
	if err != nil {
		h.logger.Error("update settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settingsResponse(saved))
}
