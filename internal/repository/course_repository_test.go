package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekplan-api/internal/models"
	appErrors "github.com/noah-isme/weekplan-api/pkg/errors"
)

func TestCourseRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "course_code", "name", "schedule", "location", "metadata", "created_at", "updated_at"}).
		AddRow("c1", "user-1", "CS101", "Intro",
			[]byte(`[{"dayOfWeek":"Monday","startTime":"09:00","endTime":"10:30"}]`),
			[]byte(`{"building":"Engineering","room":"101"}`),
			[]byte(`{"creditHours":3,"difficulty":3,"department":"CS","prerequisites":[]}`),
			now, now)
	mock.ExpectQuery("SELECT id, owner_id, course_code").WithArgs("user-1").WillReturnRows(rows)

	courses, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].CourseCode)
	assert.Equal(t, "10:30", courses[0].Schedule[0].EndTime)
	assert.Equal(t, "Engineering", courses[0].Location.Building)
	assert.Equal(t, 3.0, courses[0].Metadata.CreditHours)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("c-new", "user-1", "CS101", "Intro", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c-old", created))

	course := &models.Course{ID: "c-new", OwnerID: "user-1", CourseCode: "CS101", Name: "Intro"}
	require.NoError(t, repo.Upsert(context.Background(), course))
	assert.Equal(t, "c-old", course.ID)
	assert.Equal(t, created, course.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("DELETE FROM courses").WithArgs("user-1", "c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM courses").WithArgs("user-1", "c2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "user-1", "c1"))
	err := repo.Delete(context.Background(), "user-1", "c2")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
