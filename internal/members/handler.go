package members

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/httpx"
)

// Handler manages account and profile endpoints.
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

// MountRoutes registers member routes. Role lists are derived from the
// policy table, not hand-written per route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceUsers))
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Delete("/{id}", h.deactivateAccount)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourcePersonalData))
		r.Get("/{id}/profile", h.getProfile)
		r.Put("/{id}/profile", h.updateProfile)
	})
}

type createAccountRequest struct {
	Role             string `json:"role" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	CPF              string `json:"cpf" validate:"omitempty,len=11"`
	Phone            string `json:"phone"`
	BirthDate        string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
}

type updateProfileRequest struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	CPF              string `json:"cpf" validate:"omitempty,len=11"`
	Phone            string `json:"phone"`
	BirthDate        string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	accounts, err := h.service.ListAccounts(r.Context(), *caller, authz.Role(r.URL.Query().Get("role")))
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	member := Member{
		Role:             authz.Role(req.Role),
		Name:             req.Name,
		Email:            req.Email,
		CPF:              req.CPF,
		Phone:            req.Phone,
		BirthDate:        parseDate(req.BirthDate),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
	}
	created, err := h.service.CreateAccount(r.Context(), *caller, member)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": created.ID})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	profile, err := h.service.GetProfile(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	caller := authz.IdentityFromContext(r.Context())
	member := Member{
		ID:               chi.URLParam(r, "id"),
		Name:             req.Name,
		Email:            req.Email,
		CPF:              req.CPF,
		Phone:            req.Phone,
		BirthDate:        parseDate(req.BirthDate),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
	}
	profile, err := h.service.UpdateProfile(r.Context(), *caller, member)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	if err := h.service.DeactivateAccount(r.Context(), *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", value)
	return t
}
