package checkins

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/platform/db"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a check-in and stamps the member's last visit in the same
// transaction.
func (r *Repository) Insert(ctx context.Context, c CheckIn) (CheckIn, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO check_ins (id, member_id, registered_by, occurred_at)
			VALUES ($1, $2, $3, $4)`,
			c.ID, c.MemberID, c.RegisteredBy, c.At); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE members SET last_check_in_at = $2 WHERE id = $1`,
			c.MemberID, c.At)
		return err
	})
	if err != nil {
		return CheckIn{}, err
	}
	return c, nil
}

// ListByMember returns a page of a member's check-ins, newest first.
func (r *Repository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]CheckIn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, registered_by, occurred_at
		FROM check_ins WHERE member_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CheckIn
	for rows.Next() {
		var c CheckIn
		if err := rows.Scan(&c.ID, &c.MemberID, &c.RegisteredBy, &c.At); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByMember returns the total number of check-ins for a member.
func (r *Repository) CountByMember(ctx context.Context, memberID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM check_ins WHERE member_id = $1`, memberID).Scan(&total)
	return total, err
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
