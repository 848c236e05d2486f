package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

// PreferenceRepository persists one constraints record per user.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUser returns the user's preferences or appErrors.ErrNotFound.
func (r *PreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.SchedulePreference, error) {
	const query = `SELECT id, user_id, constraints, created_at, updated_at FROM schedule_preferences WHERE user_id = $1`
	var pref models.SchedulePreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get schedule preference: %w", err)
	}
	return &pref, nil
}

// Upsert inserts or replaces the user's constraints. The stored id and creation time are
// written back to pref.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.SchedulePreference) error {
	const query = `INSERT INTO schedule_preferences (id, user_id, constraints, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id)
DO UPDATE SET constraints = EXCLUDED.constraints, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, pref.ID, pref.UserID, pref.Constraints, pref.CreatedAt, pref.UpdatedAt)
	if err := row.Scan(&pref.ID, &pref.CreatedAt); err != nil {
		return fmt.Errorf("upsert schedule preference: %w", err)
	}
	return nil
}
