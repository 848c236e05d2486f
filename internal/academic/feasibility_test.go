package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/weekplan-api/internal/models"
)

func TestFeasibilityEmptySemester(t *testing.T) {
	report := Feasibility(nil, nil, models.ScheduleConstraints{})

	assert.Equal(t, 100.0, report.Score)
	assert.Zero(t, report.AverageDifficulty)
	assert.Empty(t, report.Penalties)
}

func TestFeasibilityDetectsConflictsWhenNotSupplied(t *testing.T) {
	courses := []models.Course{
		course("a", "CS101", slot("Monday", "09:00", "10:30")),
		course("b", "MATH201", slot("Monday", "10:00", "11:00")),
	}

	report := Feasibility(courses, nil, models.ScheduleConstraints{})

	assert.Equal(t, 70.0, report.Score)
	assert.Equal(t, 1, report.ConflictCounts[models.SeverityCritical])
	assert.Equal(t, 6.0, report.TotalCredits)
	assert.Equal(t, 3.0, report.AverageDifficulty)
	assert.InDelta(t, 12.0, report.TotalHoursPerWeek, 1e-9)
}

func TestFeasibilityUsesSuppliedConflicts(t *testing.T) {
	conflicts := []models.CourseConflict{
		{Type: models.ConflictPrerequisiteMissing, Severity: models.SeverityHigh},
		{Type: models.ConflictLocation, Severity: models.SeverityMedium},
		{Type: models.ConflictLocation, Severity: models.SeverityLow},
	}

	report := Feasibility(nil, conflicts, models.ScheduleConstraints{})

	assert.Equal(t, 80.0, report.Score)
	assert.Equal(t, 20.0, report.Penalties[PenaltyConflicts])
	assert.Equal(t, 1, report.ConflictCounts[models.SeverityLow])
}

func TestFeasibilityPenalties(t *testing.T) {
	courses := []models.Course{
		withMetadata(course("a", "A1"), 3, 5, ""),
		withMetadata(course("b", "B1"), 3, 4, ""),
		withMetadata(course("c", "C1"), 3, 5, ""),
	}

	report := Feasibility(courses, nil, models.ScheduleConstraints{MaxCreditsPerSemester: 6})

	assert.Equal(t, 30.0, report.Penalties[PenaltyCredits])
	assert.InDelta(t, 4.67, report.AverageDifficulty, 1e-9)
	assert.InDelta(t, 8.35, report.Penalties[PenaltyDifficulty], 1e-9)
	assert.InDelta(t, 61.65, report.Score, 1e-9)
}

func TestFeasibilityClampsAtZero(t *testing.T) {
	var courses []models.Course
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		courses = append(courses, withMetadata(course(id, "ENGR"+id), 4, 5, "ENGR"))
	}

	report := Feasibility(courses, nil, models.ScheduleConstraints{})

	assert.Zero(t, report.Score)
	assert.Equal(t, 140.0, report.Penalties[PenaltyCredits])
	assert.Equal(t, 140.0, report.Penalties[PenaltyWorkload])
}
