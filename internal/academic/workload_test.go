package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/weekplan-api/internal/models"
)

func withMetadata(c models.Course, credits float64, difficulty int, dept string) models.Course {
	c.Metadata = models.CourseMetadata{CreditHours: credits, Difficulty: difficulty, Department: dept}
	return c
}

func TestEstimateWorkloadComputerScience(t *testing.T) {
	w := EstimateWorkload(withMetadata(course("cs", "CS101"), 3, 3, "CS"))

	assert.InDelta(t, 7.8, w.EstimatedHoursPerWeek, 1e-9)
	assert.Equal(t, "cs", w.CourseID)
	assert.Equal(t, 3, w.Difficulty)
	assert.Equal(t, models.AssignmentModerate, w.AssignmentLoad)
	assert.Equal(t, models.ExamModerate, w.ExamFrequency)
	assert.Equal(t, 30, w.GroupWorkPercentage)
}

func TestEstimateWorkloadTables(t *testing.T) {
	cases := []struct {
		name       string
		course     models.Course
		hours      float64
		assignment models.AssignmentLoad
		exams      models.ExamFrequency
		groupWork  int
	}{
		{"easy arts", withMetadata(course("a", "ARTS100"), 2, 1, "arts"), 2.56, models.AssignmentLight, models.ExamLow, 20},
		{"hard engineering", withMetadata(course("e", "ENGR300"), 4, 5, "ENGR"), 15, models.AssignmentHeavy, models.ExamHigh, 40},
		{"unknown department", withMetadata(course("b", "BUS200"), 3, 4, "BUS"), 7.2, models.AssignmentModerate, models.ExamModerate, 50},
		{"unset difficulty", withMetadata(course("u", "XYZ100"), 3, 0, ""), 6, models.AssignmentModerate, models.ExamModerate, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := EstimateWorkload(tc.course)
			assert.InDelta(t, tc.hours, w.EstimatedHoursPerWeek, 1e-9)
			assert.Equal(t, tc.assignment, w.AssignmentLoad)
			assert.Equal(t, tc.exams, w.ExamFrequency)
			assert.Equal(t, tc.groupWork, w.GroupWorkPercentage)
		})
	}
}

func TestDifficultyClamp(t *testing.T) {
	assert.Equal(t, 5, Difficulty(withMetadata(course("x", "X"), 3, 9, "")))
	assert.Equal(t, 1, Difficulty(withMetadata(course("x", "X"), 3, -2, "")))
	assert.Equal(t, 3, Difficulty(withMetadata(course("x", "X"), 3, 0, "")))
}

func TestTotalHours(t *testing.T) {
	courses := []models.Course{
		withMetadata(course("cs", "CS101"), 3, 3, "CS"),
		withMetadata(course("h", "HIST100"), 3, 2, "HIST"),
	}
	assert.InDelta(t, 12.66, TotalHours(courses), 1e-9)
	assert.Len(t, EstimateWorkloads(courses), 2)
}
