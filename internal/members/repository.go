package members

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

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, role, name, email, cpf, phone, birth_date, address, emergency_contact, is_active, created_at, updated_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	var role string
	err := row.Scan(&m.ID, &role, &m.Name, &m.Email, &m.CPF, &m.Phone, &m.BirthDate, &m.Address, &m.EmergencyContact, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	m.Role = authz.Role(role)
	return m, nil
}

// Get fetches a member by ID.
func (r *Repository) Get(ctx context.Context, id string) (Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

// List returns members filtered by role; an empty role returns everyone.
func (r *Repository) List(ctx context.Context, role authz.Role) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY name`
	args := []any{}
	if role != "" {
		query = `SELECT ` + memberColumns + ` FROM members WHERE role = $1 ORDER BY name`
		args = append(args, string(role))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a new member record.
func (r *Repository) Create(ctx context.Context, m Member) (Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO members (id, role, name, email, cpf, phone, birth_date, address, emergency_contact, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		m.ID, string(m.Role), m.Name, m.Email, m.CPF, m.Phone, m.BirthDate, m.Address, m.EmergencyContact, true, now)
	if err != nil {
		return Member{}, mapWriteError(err)
	}
	m.Active = true
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Update rewrites the mutable profile fields of a member.
func (r *Repository) Update(ctx context.Context, m Member) (Member, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE members
		SET name = $2, email = $3, cpf = $4, phone = $5, birth_date = $6, address = $7, emergency_contact = $8, updated_at = NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.CPF, m.Phone, m.BirthDate, m.Address, m.EmergencyContact)
	if err != nil {
		return Member{}, mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return Member{}, shared.ErrNotFound
	}
	return r.Get(ctx, m.ID)
}

// Deactivate marks the member inactive without deleting history.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE members SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
