package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekplan-api/internal/models"
)

func inDepartment(c models.Course, dept string) models.Course {
	c.Metadata.Department = dept
	return c
}

func TestRecommendRulesAndOrdering(t *testing.T) {
	prereq := course("c-prereq", "MATH250", slot("Friday", "13:00", "14:00"))
	prereq.Metadata.Prerequisites = []string{"MATH150"}

	recs := Recommend(RecommendationRequest{
		Current:            []models.Course{inDepartment(course("cur", "CS101", slot("Monday", "13:00", "14:00")), "CS")},
		Completed:          []string{"HIST100"},
		JustCompleted:      []string{"math150"},
		DegreeRequirements: []string{"ENG200"},
		Constraints:        models.ScheduleConstraints{StudyTimePreference: models.StudyMorning},
		Candidates: []models.Course{
			course("c-fit-b", "BIO100", slot("Thursday", "13:00", "14:00")),
			prereq,
			course("c-degree", "ENG200", slot("Wednesday", "13:00", "14:00")),
			inDepartment(course("c-interest", "CS150", slot("Tuesday", "08:00", "09:00")), "CS"),
			course("c-fit-a", "CHEM100"),
			course("c-taken", "CS101"),
			course("c-done", "HIST100"),
		},
	})

	require.Len(t, recs, 5)
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.CourseID
	}
	assert.Equal(t, []string{"c-degree", "c-prereq", "c-interest", "c-fit-a", "c-fit-b"}, ids)

	assert.Equal(t, 0.9, recs[0].Confidence)
	assert.Equal(t, CategoryDegreeRequirement, recs[0].Category)
	assert.Equal(t, 0.85, recs[1].Confidence)
	assert.Equal(t, CategoryPrerequisite, recs[1].Category)
	assert.InDelta(t, 0.8, recs[2].Confidence, 1e-9)
	assert.Equal(t, CategoryInterest, recs[2].Category)
	assert.Equal(t, 0.6, recs[3].Confidence)
	assert.Equal(t, CategoryWorkloadFit, recs[3].Category)
}

func TestRecommendHonoursTimeAvoidance(t *testing.T) {
	required := course("req", "ENG200", slot("Monday", "07:30", "08:30"))
	recs := Recommend(RecommendationRequest{
		DegreeRequirements: []string{"ENG200"},
		Constraints: models.ScheduleConstraints{
			AvoidEarlyClasses:  true,
			AvoidLateClasses:   true,
			LateClassThreshold: "20:00",
		},
		Candidates: []models.Course{
			required,
			course("early", "CS100", slot("Monday", "08:00", "09:00")),
			course("late", "CS110", slot("Monday", "19:00", "20:30")),
			course("ok", "CS120", slot("Monday", "18:00", "19:30")),
		},
	})

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.CourseID
	}
	assert.Equal(t, []string{"req", "ok"}, ids)
}

func TestRecommendWorkloadCeiling(t *testing.T) {
	recs := Recommend(RecommendationRequest{
		Constraints: models.ScheduleConstraints{MaxCreditsPerSemester: 2},
		Candidates:  []models.Course{inDepartment(course("heavy", "CS300"), "CS")},
	})

	assert.Empty(t, recs)
	assert.NotNil(t, recs)
}

func TestRecommendDifficultyBalance(t *testing.T) {
	hard := withMetadata(course("h1", "PHYS300"), 3, 5, "PHYS")
	harder := withMetadata(course("h2", "PHYS310"), 3, 4, "PHYS")
	easy := withMetadata(course("easy", "PHYS101", slot("Monday", "18:00", "19:00")), 3, 1, "ARTS")

	req := RecommendationRequest{
		Current:     []models.Course{hard, harder},
		Candidates:  []models.Course{easy},
		Constraints: models.ScheduleConstraints{StudyTimePreference: models.StudyEvening, DifficultyBalance: true},
	}
	balanced := Recommend(req)
	require.Len(t, balanced, 1)
	assert.Equal(t, CategoryInterest, balanced[0].Category)
	assert.InDelta(t, 0.8, balanced[0].Confidence, 1e-9)

	req.Constraints.DifficultyBalance = false
	plain := Recommend(req)
	require.Len(t, plain, 1)
	assert.Equal(t, CategoryWorkloadFit, plain[0].Category)
}
