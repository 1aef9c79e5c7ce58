package health

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

const metricColumns = `id, member_id, recorded_by, recorded_at, weight_kg, height_cm, body_fat_pct, coach_notes`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMetric(row pgx.Row) (Metric, error) {
	var m Metric
	err := row.Scan(&m.ID, &m.MemberID, &m.RecordedBy, &m.RecordedAt,
		&m.WeightKg, &m.HeightCm, &m.BodyFatPct, &m.CoachNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Metric{}, shared.ErrNotFound
	}
	return m, err
}

// InsertMetric stores a measurement.
func (r *Repository) InsertMetric(ctx context.Context, m Metric) (Metric, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO health_metrics (id, member_id, recorded_by, recorded_at, weight_kg, height_cm, body_fat_pct, coach_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+metricColumns,
		m.ID, m.MemberID, m.RecordedBy, m.RecordedAt, m.WeightKg, m.HeightCm, m.BodyFatPct, m.CoachNotes)
	return scanMetric(row)
}

// GetMetric fetches one measurement by id.
func (r *Repository) GetMetric(ctx context.Context, id string) (Metric, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+metricColumns+` FROM health_metrics WHERE id = $1`, id)
	return scanMetric(row)
}

// ListMetrics returns a member's measurements, newest first.
func (r *Repository) ListMetrics(ctx context.Context, memberID string) ([]Metric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+metricColumns+` FROM health_metrics
		WHERE member_id = $1
		ORDER BY recorded_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMetric rewrites a measurement.
func (r *Repository) UpdateMetric(ctx context.Context, m Metric) (Metric, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE health_metrics
		SET weight_kg = $2, height_cm = $3, body_fat_pct = $4, coach_notes = $5
		WHERE id = $1
		RETURNING `+metricColumns,
		m.ID, m.WeightKg, m.HeightCm, m.BodyFatPct, m.CoachNotes)
	return scanMetric(row)
}

// DeleteMetric removes a measurement.
func (r *Repository) DeleteMetric(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM health_metrics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertObservation stores a coach note.
func (r *Repository) InsertObservation(ctx context.Context, o Observation) (Observation, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO coach_observations (id, member_id, coach_id, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, member_id, coach_id, note, created_at, updated_at`,
		o.ID, o.MemberID, o.CoachID, o.Note)
	var created Observation
	err := row.Scan(&created.ID, &created.MemberID, &created.CoachID, &created.Note, &created.CreatedAt, &created.UpdatedAt)
	return created, err
}

// GetObservation fetches one coach note by id.
func (r *Repository) GetObservation(ctx context.Context, id string) (Observation, error) {
	var o Observation
	err := r.pool.QueryRow(ctx, `
		SELECT id, member_id, coach_id, note, created_at, updated_at
		FROM coach_observations WHERE id = $1`, id).
		Scan(&o.ID, &o.MemberID, &o.CoachID, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Observation{}, shared.ErrNotFound
	}
	return o, err
}

// ListObservations returns the notes for a member, newest first.
func (r *Repository) ListObservations(ctx context.Context, memberID string) ([]Observation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, coach_id, note, created_at, updated_at
		FROM coach_observations
		WHERE member_id = $1
		ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.MemberID, &o.CoachID, &o.Note, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateObservation rewrites a coach note.
func (r *Repository) UpdateObservation(ctx context.Context, id, note string) (Observation, error) {
	var o Observation
	err := r.pool.QueryRow(ctx, `
		UPDATE coach_observations
		SET note = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, member_id, coach_id, note, created_at, updated_at`, id, note).
		Scan(&o.ID, &o.MemberID, &o.CoachID, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Observation{}, shared.ErrNotFound
	}
	return o, err
}

// DeleteObservation removes a coach note.
func (r *Repository) DeleteObservation(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coach_observations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
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
