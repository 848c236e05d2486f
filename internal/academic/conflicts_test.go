package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekplan-api/internal/models"
)

func course(id, code string, slots ...models.RecurringTimeSlot) models.Course {
	return models.Course{
		ID:         id,
		CourseCode: code,
		Schedule:   slots,
		Metadata:   models.CourseMetadata{CreditHours: 3, Difficulty: 3},
	}
}

func slot(day, start, end string) models.RecurringTimeSlot {
	return models.RecurringTimeSlot{DayOfWeek: day, StartTime: start, EndTime: end}
}

func at(c models.Course, building string) models.Course {
	c.Location = models.CourseLocation{Building: building, Room: "101"}
	return c
}

func TestDetectConflictsTimeOverlap(t *testing.T) {
	a := course("a", "CS101", slot("Monday", "09:00", "10:30"))
	b := course("b", "MATH201", slot("Monday", "10:00", "11:00"))

	conflicts := DetectConflicts([]models.Course{a, b})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictTimeOverlap, conflicts[0].Type)
	assert.Equal(t, models.SeverityCritical, conflicts[0].Severity)
	assert.False(t, conflicts[0].AutoResolvable)
	assert.Contains(t, conflicts[0].Description, "30 minutes")
	require.Len(t, conflicts[0].Courses, 2)
	assert.Equal(t, "CS101", conflicts[0].Courses[0].CourseCode)
}

func TestDetectConflictsIsSymmetric(t *testing.T) {
	a := course("a", "CS101", slot("Monday", "09:00", "10:30"), slot("Wednesday", "09:00", "10:30"))
	b := course("b", "MATH201", slot("Wednesday", "10:00", "11:00"))

	forward := DetectConflicts([]models.Course{a, b})
	backward := DetectConflicts([]models.Course{b, a})

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].Type, backward[0].Type)
	assert.Equal(t, forward[0].Severity, backward[0].Severity)
}

func TestDetectConflictsAdjacentSlotsDoNotOverlap(t *testing.T) {
	a := course("a", "CS101", slot("Monday", "09:00", "10:00"))
	b := course("b", "MATH201", slot("Monday", "10:00", "11:00"))
	c := course("c", "HIST100", slot("Tuesday", "09:30", "10:30"))

	assert.Empty(t, DetectConflicts([]models.Course{a, b, c}))
	assert.NotNil(t, DetectConflicts(nil))
}

func TestDetectConflictsLocation(t *testing.T) {
	a := at(course("a", "CS101", slot("Monday", "09:00", "09:50")), "Arts")
	b := at(course("b", "ENGR210", slot("Monday", "10:00", "10:50")), "Engineering")

	conflicts := DetectConflicts([]models.Course{a, b})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictLocation, conflicts[0].Type)
	assert.Equal(t, models.SeverityMedium, conflicts[0].Severity)
	assert.True(t, conflicts[0].AutoResolvable)
	assert.Equal(t, "CS101", conflicts[0].Courses[0].CourseCode)
}

func TestDetectConflictsLocationWithinReach(t *testing.T) {
	a := at(course("a", "CS101", slot("Monday", "09:00", "09:50")), "Library")
	b := at(course("b", "ENG110", slot("Monday", "10:00", "10:50")), "Student Center")
	same := at(course("c", "CS102", slot("Monday", "10:55", "11:30")), "library")

	assert.Empty(t, DetectConflicts([]models.Course{a, b}))
	assert.Empty(t, DetectConflicts([]models.Course{a, same}))
}

func TestDetectConflictsLocationIgnoresLongGaps(t *testing.T) {
	a := at(course("a", "CS101", slot("Monday", "09:00", "09:30")), "Arts")
	b := at(course("b", "ENGR210", slot("Monday", "10:00", "10:50")), "Engineering")

	assert.Empty(t, DetectConflicts([]models.Course{a, b}))
}

func TestDetectConflictsMissingPrerequisites(t *testing.T) {
	a := course("a", "CS101", slot("Monday", "09:00", "10:00"))
	b := course("b", "CS201", slot("Tuesday", "09:00", "10:00"))
	b.Metadata.Prerequisites = []string{"cs101", "MATH150", "CS110"}

	conflicts := DetectConflicts([]models.Course{a, b})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictPrerequisiteMissing, conflicts[0].Type)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)
	assert.False(t, conflicts[0].AutoResolvable)
	assert.Equal(t, "CS201 requires CS110, MATH150", conflicts[0].Description)
}

func TestDetectConflictsDoesNotAliasInput(t *testing.T) {
	a := course("a", "CS101", slot("Monday", "09:00", "10:30"))
	b := course("b", "MATH201", slot("Monday", "10:00", "11:00"))

	conflicts := DetectConflicts([]models.Course{a, b})
	conflicts[0].Courses[0].Schedule[0].StartTime = "07:00"

	assert.Equal(t, "09:00", a.Schedule[0].StartTime)
}

func TestDistanceTable(t *testing.T) {
	assert.Equal(t, 0.3, Distance("Science", "engineering"))
	assert.Equal(t, 0.3, Distance("Engineering", "Science"))
	assert.Equal(t, defaultDistance, Distance("Gym", "Library"))
	assert.Zero(t, Distance("Arts", " arts "))
	assert.InDelta(t, 16.0, TravelMinutes("Arts", "Engineering"), 1e-9)
}
