package academic

import (
	"math"
	"strings"

	"github.com/noah-isme/weekplan-api/internal/models"
)

const (
	defaultDifficulty = 3
	defaultGroupWork  = 20
	hoursPerCredit    = 2.0
)

// difficultyMultipliers is indexed by difficulty-1.
var difficultyMultipliers = [5]float64{0.8, 0.9, 1.0, 1.2, 1.5}

var departmentMultipliers = map[string]float64{
	"CS":   1.3,
	"MATH": 1.2,
	"ENGR": 1.25,
	"PHYS": 1.2,
	"CHEM": 1.2,
	"BIO":  1.1,
	"ENG":  1.0,
	"HIST": 0.9,
	"ARTS": 0.8,
	"MUS":  0.85,
}

var groupWorkByDepartment = map[string]int{
	"ENGR": 40,
	"BUS":  50,
	"CS":   30,
}

// Difficulty returns the course difficulty clamped to 1-5, treating unset as 3.
func Difficulty(course models.Course) int {
	d := course.Metadata.Difficulty
	switch {
	case d == 0:
		return defaultDifficulty
	case d < 1:
		return 1
	case d > len(difficultyMultipliers):
		return len(difficultyMultipliers)
	}
	return d
}

func department(course models.Course) string {
	return strings.ToUpper(strings.TrimSpace(course.Metadata.Department))
}

func credits(course models.Course) float64 {
	if course.Metadata.CreditHours < 0 || math.IsNaN(course.Metadata.CreditHours) {
		return 0
	}
	return course.Metadata.CreditHours
}

// EstimateWorkload derives weekly effort for a single course.
func EstimateWorkload(course models.Course) models.CourseWorkload {
	difficulty := Difficulty(course)
	creditHours := credits(course)
	dept := department(course)

	multiplier, ok := departmentMultipliers[dept]
	if !ok {
		multiplier = 1.0
	}
	hours := creditHours * hoursPerCredit * difficultyMultipliers[difficulty-1] * multiplier

	groupWork, ok := groupWorkByDepartment[dept]
	if !ok {
		groupWork = defaultGroupWork
	}
	return models.CourseWorkload{
		CourseID:              course.ID,
		EstimatedHoursPerWeek: round2(hours),
		Difficulty:            difficulty,
		AssignmentLoad:        assignmentLoad(creditHours + float64(difficulty)),
		ExamFrequency:         examFrequency(creditHours),
		GroupWorkPercentage:   groupWork,
	}
}

// EstimateWorkloads estimates every course in order.
func EstimateWorkloads(courses []models.Course) []models.CourseWorkload {
	out := make([]models.CourseWorkload, 0, len(courses))
	for _, course := range courses {
		out = append(out, EstimateWorkload(course))
	}
	return out
}

// TotalHours sums the weekly estimates of a course set.
func TotalHours(courses []models.Course) float64 {
	total := 0.0
	for _, course := range courses {
		total += EstimateWorkload(course).EstimatedHoursPerWeek
	}
	return round2(total)
}

func assignmentLoad(score float64) models.AssignmentLoad {
	switch {
	case score >= 8:
		return models.AssignmentHeavy
	case score >= 5:
		return models.AssignmentModerate
	default:
		return models.AssignmentLight
	}
}

func examFrequency(creditHours float64) models.ExamFrequency {
	switch {
	case creditHours >= 4:
		return models.ExamHigh
	case creditHours >= 3:
		return models.ExamModerate
	default:
		return models.ExamLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
