package billing

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/httpx"
)

// RefreshEnqueuer submits the overdue-status refresh job to the queue.
type RefreshEnqueuer interface {
	EnqueueMonthlyStatusRefresh(ctx context.Context) (*asynq.TaskInfo, error)
}

// Handler manages billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer RefreshEnqueuer
	gate     authz.Gate
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, enqueuer RefreshEnqueuer, gate authz.Gate) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		enqueuer: enqueuer,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceFinancial))
		r.Post("/invoices", h.createInvoice)
		r.Get("/invoices/{id}", h.getInvoice)
		r.Post("/invoices/{id}/pay", h.markPaid)
		r.Get("/members/{id}/invoices", h.listInvoices)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireResource(authz.ResourceMonthlyPayment))
		r.Get("/members/{id}/monthly-status", h.monthlyStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(authz.RoleMaster, authz.RoleAdmin))
		r.Post("/refresh-overdue", h.enqueueRefresh)
	})
}

type createInvoiceRequest struct {
	MemberID       string `json:"memberId" validate:"required,uuid4"`
	ReferenceMonth string `json:"referenceMonth" validate:"required,len=7"`
	AmountCents    int64  `json:"amountCents" validate:"required,gt=0"`
	DueDate        string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	InternalNotes  string `json:"internalNotes"`
	DiscountReason string `json:"discountReason"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)
	caller := authz.IdentityFromContext(r.Context())
	created, err := h.service.CreateInvoice(r.Context(), *caller, Invoice{
		MemberID:       req.MemberID,
		ReferenceMonth: req.ReferenceMonth,
		AmountCents:    req.AmountCents,
		DueDate:        dueDate,
		InternalNotes:  req.InternalNotes,
		DiscountReason: req.DiscountReason,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	inv, err := h.service.GetInvoice(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	invoices, err := h.service.ListInvoices(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	caller := authz.IdentityFromContext(r.Context())
	paid, err := h.service.MarkPaid(r.Context(), *caller, chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, paid)
}

func (h *Handler) monthlyStatus(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	caller := authz.IdentityFromContext(r.Context())
	st, err := h.service.GetMonthlyStatus(r.Context(), *caller, chi.URLParam(r, "id"), month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) enqueueRefresh(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "job queue is not configured")
		return
	}
	info, err := h.enqueuer.EnqueueMonthlyStatusRefresh(r.Context())
	if err != nil {
		h.logger.Error("enqueue overdue refresh", slog.Any("error", err))
		httpx.Error(w, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "could not enqueue refresh job")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"taskId": info.ID, "queue": info.Queue})
}
