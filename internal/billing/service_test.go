package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

type mockRepository struct {
	roles    map[string]authz.Role
	invoices map[string]Invoice
}

func newMockRepository(roles map[string]authz.Role, invoices ...Invoice) *mockRepository {
	repo := &mockRepository{roles: roles, invoices: make(map[string]Invoice)}
	for _, inv := range invoices {
		repo.invoices[inv.ID] = inv
	}
	return repo
}

func (m *mockRepository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	if inv.ID == "" {
		inv.ID = "generated-id"
	}
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	for _, existing := range m.invoices {
		if existing.MemberID == inv.MemberID && existing.ReferenceMonth == inv.ReferenceMonth {
			return Invoice{}, shared.ErrDuplicate
		}
	}
	m.invoices[inv.ID] = inv
	return inv, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (m *mockRepository) ListByMember(ctx context.Context, memberID string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.MemberID == memberID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	inv.Status = StatusPaid
	inv.PaidAt = &paidAt
	m.invoices[id] = inv
	return inv, nil
}

func (m *mockRepository) MonthlyStatus(ctx context.Context, memberID, referenceMonth string) (MonthlyStatus, error) {
	for _, inv := range m.invoices {
		if inv.MemberID == memberID && inv.ReferenceMonth == referenceMonth {
			return MonthlyStatus{
				MemberID:       inv.MemberID,
				ReferenceMonth: inv.ReferenceMonth,
				Status:         inv.Status,
				AmountCents:    inv.AmountCents,
				DueDate:        inv.DueDate,
				PaidAt:         inv.PaidAt,
			}, nil
		}
	}
	return MonthlyStatus{}, shared.ErrNotFound
}

func (m *mockRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var changed int64
	for id, inv := range m.invoices {
		if inv.Status == StatusPending && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			m.invoices[id] = inv
			changed++
		}
	}
	return changed, nil
}

func (m *mockRepository) MemberRole(ctx context.Context, memberID string) (authz.Role, error) {
	role, ok := m.roles[memberID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func dueDate() time.Time {
	return time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
}

func invoice(id, memberID string) Invoice {
	return Invoice{
		ID:             id,
		MemberID:       memberID,
		ReferenceMonth: "2026-03",
		AmountCents:    15000,
		DueDate:        dueDate(),
		Status:         StatusPending,
		InternalNotes:  "negotiated rate",
		DiscountReason: "referral program",
	}
}

func TestStaffCreatesInvoice(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember})
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	rec, err := svc.CreateInvoice(context.Background(), authz.Identity{ID: "s1", Role: authz.RoleStaff}, invoice("", "m1"))
	require.NoError(t, err)
	assert.Equal(t, "m1", rec["memberId"])
	assert.Equal(t, "negotiated rate", rec["internalNotes"])
	assert.Equal(t, StatusPending, rec["status"])
}

func TestMemberCannotCreateInvoice(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember})
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	_, err := svc.CreateInvoice(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, invoice("", "m1"))
	var perr *authz.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, authz.ActionCreate, perr.Action)
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember})
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))
	staff := authz.Identity{ID: "s1", Role: authz.RoleStaff}

	zero := invoice("", "m1")
	zero.AmountCents = 0
	_, err := svc.CreateInvoice(context.Background(), staff, zero)
	require.ErrorIs(t, err, shared.ErrValidation)

	badMonth := invoice("", "m1")
	badMonth.ReferenceMonth = "March 2026"
	_, err = svc.CreateInvoice(context.Background(), staff, badMonth)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestMemberReadsOwnInvoiceRedacted(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember}, invoice("i1", "m1"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	rec, err := svc.GetInvoice(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, "i1")
	require.NoError(t, err)
	assert.Equal(t, "R$ 150,00", rec["amount"])
	assert.NotContains(t, rec, "internalNotes")
	assert.NotContains(t, rec, "discountReason")
}

func TestMemberCannotReadAnotherMembersInvoice(t *testing.T) {
	repo := newMockRepository(
		map[string]authz.Role{"m1": authz.RoleMember, "m2": authz.RoleMember},
		invoice("i1", "m2"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	_, err := svc.GetInvoice(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, "i1")
	var perr *authz.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, authz.ResourceFinancial, perr.Resource)
}

func TestAdminReadsInvoiceUnredacted(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember}, invoice("i1", "m1"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	rec, err := svc.GetInvoice(context.Background(), authz.Identity{ID: "a1", Role: authz.RoleAdmin}, "i1")
	require.NoError(t, err)
	assert.Equal(t, "negotiated rate", rec["internalNotes"])
	assert.Equal(t, "referral program", rec["discountReason"])
}

func TestStaffMarksInvoicePaid(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember}, invoice("i1", "m1"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	rec, err := svc.MarkPaid(context.Background(), authz.Identity{ID: "s1", Role: authz.RoleStaff}, "i1", dueDate().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, rec["status"])

	_, err = svc.MarkPaid(context.Background(), authz.Identity{ID: "s1", Role: authz.RoleStaff}, "i1", dueDate())
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestMemberReadsOwnMonthlyStatus(t *testing.T) {
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember}, invoice("i1", "m1"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	rec, err := svc.GetMonthlyStatus(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, "m1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec["status"])
	assert.Equal(t, "R$ 150,00", rec["amount"])
}

func TestMemberCannotReadAnotherMembersMonthlyStatus(t *testing.T) {
	repo := newMockRepository(
		map[string]authz.Role{"m1": authz.RoleMember, "m2": authz.RoleMember},
		invoice("i1", "m2"))
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	_, err := svc.GetMonthlyStatus(context.Background(), authz.Identity{ID: "m1", Role: authz.RoleMember}, "m2", "2026-03")
	var perr *authz.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, authz.ResourceMonthlyPayment, perr.Resource)
}

func TestRefreshOverdueFlipsPastDuePending(t *testing.T) {
	late := invoice("i1", "m1")
	paid := invoice("i2", "m2")
	paid.Status = StatusPaid
	repo := newMockRepository(map[string]authz.Role{"m1": authz.RoleMember, "m2": authz.RoleMember}, late, paid)
	svc := NewService(repo, authz.NewEngine(authz.DefaultTable()))

	changed, err := svc.RefreshOverdue(context.Background(), dueDate().AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Equal(t, StatusOverdue, repo.invoices["i1"].Status)
	assert.Equal(t, StatusPaid, repo.invoices["i2"].Status)
}
