package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

const courseColumns = `id, owner_id, course_code, name, schedule, location, metadata, created_at, updated_at`

// CourseRepository persists user course sets. Codes are unique per owner.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByOwner returns the owner's courses ordered by code.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE owner_id = $1 ORDER BY course_code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, ownerID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Upsert inserts a course or replaces the one with the same owner and code. The stored
// id and creation time are written back to course.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (id, owner_id, course_code, name, schedule, location, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (owner_id, course_code)
DO UPDATE SET name = EXCLUDED.name, schedule = EXCLUDED.schedule, location = EXCLUDED.location,
              metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		course.ID, course.OwnerID, course.CourseCode, course.Name,
		course.Schedule, course.Location, course.Metadata,
		course.CreatedAt, course.UpdatedAt,
	)
	if err := row.Scan(&course.ID, &course.CreatedAt); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

// Delete removes a course owned by ownerID.
func (r *CourseRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows affected: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
