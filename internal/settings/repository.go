package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the single studio settings row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load returns the stored settings, or the defaults when none were saved yet.
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	row := r.pool.QueryRow(ctx, `SELECT studio_name, opening_hour, closing_hour, checkin_window_hours, monthly_due_day, updated_at FROM studio_settings WHERE id = 1`)
	var s Settings
	err := row.Scan(&s.StudioName, &s.OpeningHour, &s.ClosingHour, &s.CheckInWindowHours, &s.MonthlyDueDay, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultSettings(), nil
		}
		return Settings{}, err
	}
	return s, nil
}

// Save upserts the settings row.
func (r *Repository) Save(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO studio_settings (id, studio_name, opening_hour, closing_hour, checkin_window_hours, monthly_due_day, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE
		SET studio_name = EXCLUDED.studio_name,
		    opening_hour = EXCLUDED.opening_hour,
		    closing_hour = EXCLUDED.closing_hour,
		    checkin_window_hours = EXCLUDED.checkin_window_hours,
		    monthly_due_day = EXCLUDED.monthly_due_day,
		    updated_at = NOW()`,
		s.StudioName, s.OpeningHour, s.ClosingHour, s.CheckInWindowHours, s.MonthlyDueDay)
	return err
}
