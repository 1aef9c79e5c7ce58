package checkins

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/httpx"
	"github.com/fitdesk/fitdesk/internal/settings"
)

// SettingsLoader supplies the current studio settings for each request.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Handler manages check-in endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	settings SettingsLoader
	gate     authz.Gate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, settingsLoader SettingsLoader, gate authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, settings: settingsLoader, gate: gate}
}

// MountRoutes registers check-in routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceCheckIns))
		r.Post("/", h.selfCheckIn)
		r.Post("/member/{id}", h.registerCheckIn)
		r.Get("/member/{id}", h.history)
	})
}

func (h *Handler) loadSettings(r *http.Request) settings.Settings {
	cfg, err := h.settings.Load(r.Context())
	if err != nil {
		h.logger.Warn("load settings, using defaults", slog.Any("error", err))
		return settings.DefaultSettings()
	}
	return cfg
}

func checkInResponse(c CheckIn) map[string]any {
	return map[string]any{"id": c.ID, "memberId": c.MemberID, "at": c.At}
}

func (h *Handler) selfCheckIn(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	created, err := h.service.SelfCheckIn(r.Context(), *caller, h.loadSettings(r), time.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, checkInResponse(created))
}

func (h *Handler) registerCheckIn(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	created, err := h.service.RegisterCheckIn(r.Context(), *caller, h.loadSettings(r), chi.URLParam(r, "id"), time.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, checkInResponse(created))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	result, err := h.service.History(r.Context(), *caller, chi.URLParam(r, "id"), page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"checkIns": result.CheckIns,
		"pagination": map[string]int{
			"page":       result.Pagination.Page,
			"perPage":    result.Pagination.PerPage,
			"total":      result.Pagination.Total,
			"totalPages": result.Pagination.TotalPages,
		},
	})
}
