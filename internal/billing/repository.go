package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

const uniqueViolation = "23505"

// mapWriteError translates a unique-constraint violation into the shared
// sentinel so handlers answer 409 instead of 500.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shared.ErrDuplicate
	}
	return err
}

const invoiceColumns = `id, member_id, reference_month, amount_cents, due_date, status,
	paid_at, internal_notes, discount_reason, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.MemberID, &inv.ReferenceMonth, &inv.AmountCents, &inv.DueDate,
		&inv.Status, &inv.PaidAt, &inv.InternalNotes, &inv.DiscountReason, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, err
}

// Create stores a new invoice. One invoice per member per reference month.
func (r *Repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (id, member_id, reference_month, amount_cents, due_date, status,
			internal_notes, discount_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+invoiceColumns,
		inv.ID, inv.MemberID, inv.ReferenceMonth, inv.AmountCents, inv.DueDate, inv.Status,
		inv.InternalNotes, inv.DiscountReason)
	created, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, mapWriteError(err)
	}
	return created, nil
}

// Get fetches one invoice by id.
func (r *Repository) Get(ctx context.Context, id string) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// ListByMember returns a member's invoices, newest reference month first.
func (r *Repository) ListByMember(ctx context.Context, memberID string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE member_id = $1
		ORDER BY reference_month DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// MarkPaid settles an invoice.
func (r *Repository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE invoices
		SET status = $2, paid_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+invoiceColumns, id, StatusPaid, paidAt)
	return scanInvoice(row)
}

// MonthlyStatus returns the payment summary for one member and month.
func (r *Repository) MonthlyStatus(ctx context.Context, memberID, referenceMonth string) (MonthlyStatus, error) {
	var st MonthlyStatus
	err := r.pool.QueryRow(ctx, `
		SELECT member_id, reference_month, status, amount_cents, due_date, paid_at
		FROM invoices
		WHERE member_id = $1 AND reference_month = $2`, memberID, referenceMonth).
		Scan(&st.MemberID, &st.ReferenceMonth, &st.Status, &st.AmountCents, &st.DueDate, &st.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return MonthlyStatus{}, shared.ErrNotFound
	}
	return st, err
}

// MarkOverdue flips pending invoices past their due date to overdue and
// returns how many rows changed.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = now()
		WHERE status = $2 AND due_date < $3`, StatusOverdue, StatusPending, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MemberRole resolves the role of the account owning memberID.
func (r *Repository) MemberRole(ctx context.Context, memberID string) (authz.Role, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM members WHERE id = $1`, memberID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return authz.Role(role), nil
}
