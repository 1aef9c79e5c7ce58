package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RepositoryPort defines data access methods for billing.
type RepositoryPort interface {
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	Get(ctx context.Context, id string) (Invoice, error)
	ListByMember(ctx context.Context, memberID string) ([]Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (Invoice, error)
	MonthlyStatus(ctx context.Context, memberID, referenceMonth string) (MonthlyStatus, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	MemberRole(ctx context.Context, memberID string) (authz.Role, error)
}

// Service handles invoices and payment status.
type Service struct {
	repo   RepositoryPort
	engine *authz.Engine
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, engine *authz.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// targetContext resolves the owner role of memberID before building the
// permission context. A caller operating on their own data skips the lookup.
func (s *Service) targetContext(ctx context.Context, caller authz.Identity, memberID string) (authz.Context, error) {
	pctx := authz.Context{CallerID: caller.ID, CallerRole: caller.Role, TargetID: memberID}
	if authz.IsOwner(caller.ID, memberID) {
		pctx.TargetOwnerRole = caller.Role
		return pctx, nil
	}
	role, err := s.repo.MemberRole(ctx, memberID)
	if err != nil {
		return authz.Context{}, err
	}
	pctx.TargetOwnerRole = role
	return pctx, nil
}

// CreateInvoice issues a new monthly charge for a member.
func (s *Service) CreateInvoice(ctx context.Context, caller authz.Identity, inv Invoice) (map[string]any, error) {
	if inv.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", shared.ErrValidation)
	}
	if _, err := time.Parse("2006-01", inv.ReferenceMonth); err != nil {
		return nil, fmt.Errorf("reference month must be YYYY-MM: %w", shared.ErrValidation)
	}
	pctx, err := s.targetContext(ctx, caller, inv.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionCreate, authz.ResourceFinancial, pctx); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceFinancial, invoiceRecord(created)), nil
}

// GetInvoice returns one invoice, redacted for the caller.
func (s *Service) GetInvoice(ctx context.Context, caller authz.Identity, id string) (map[string]any, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pctx, err := s.targetContext(ctx, caller, inv.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceFinancial, pctx); err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceFinancial, invoiceRecord(inv)), nil
}

// ListInvoices returns a member's invoices, redacted for the caller.
func (s *Service) ListInvoices(ctx context.Context, caller authz.Identity, memberID string) ([]map[string]any, error) {
	pctx, err := s.targetContext(ctx, caller, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceFinancial, pctx); err != nil {
		return nil, err
	}
	invoices, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, len(invoices))
	for i, inv := range invoices {
		records[i] = invoiceRecord(inv)
	}
	return s.engine.RedactAll(caller.Role, authz.ResourceFinancial, records), nil
}

// MarkPaid settles an invoice.
func (s *Service) MarkPaid(ctx context.Context, caller authz.Identity, id string, paidAt time.Time) (map[string]any, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return nil, fmt.Errorf("invoice already paid: %w", shared.ErrValidation)
	}
	pctx, err := s.targetContext(ctx, caller, inv.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionUpdate, authz.ResourceFinancial, pctx); err != nil {
		return nil, err
	}
	paid, err := s.repo.MarkPaid(ctx, id, paidAt)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceFinancial, invoiceRecord(paid)), nil
}

// GetMonthlyStatus returns the payment summary for one member and month.
func (s *Service) GetMonthlyStatus(ctx context.Context, caller authz.Identity, memberID, referenceMonth string) (map[string]any, error) {
	if _, err := time.Parse("2006-01", referenceMonth); err != nil {
		return nil, fmt.Errorf("reference month must be YYYY-MM: %w", shared.ErrValidation)
	}
	pctx, err := s.targetContext(ctx, caller, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(caller.Role, authz.ActionRead, authz.ResourceMonthlyPayment, pctx); err != nil {
		return nil, err
	}
	st, err := s.repo.MonthlyStatus(ctx, memberID, referenceMonth)
	if err != nil {
		return nil, err
	}
	return s.engine.Redact(caller.Role, authz.ResourceMonthlyPayment, statusRecord(st)), nil
}

// RefreshOverdue recomputes overdue statuses. It runs from the background
// worker on the system's behalf, no caller identity is involved.
func (s *Service) RefreshOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkOverdue(ctx, asOf)
}
