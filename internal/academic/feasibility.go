package academic

import (
	"math"

	"github.com/noah-isme/weekplan-api/internal/models"
)

const (
	maxScore           = 100.0
	weeklyHoursCeiling = 50.0
	targetDifficulty   = 3.0
	creditOverPenalty  = 10.0
	hourOverPenalty    = 2.0
	difficultyPenalty  = 5.0
	defaultMaxCredits  = 18
)

var severityPenalties = map[models.ConflictSeverity]float64{
	models.SeverityCritical: 30,
	models.SeverityHigh:     15,
	models.SeverityMedium:   5,
}

// Penalty keys reported in FeasibilityReport.Penalties.
const (
	PenaltyCredits    = "credits"
	PenaltyWorkload   = "workload"
	PenaltyConflicts  = "conflicts"
	PenaltyDifficulty = "difficulty"
)

// MaxCredits returns the user's credit ceiling, defaulting when unset.
func MaxCredits(c models.ScheduleConstraints) int {
	if c.MaxCreditsPerSemester <= 0 {
		return defaultMaxCredits
	}
	return c.MaxCreditsPerSemester
}

// Feasibility scores a semester in [0,100]. When conflicts is nil they are detected from
// the course set.
func Feasibility(courses []models.Course, conflicts []models.CourseConflict, c models.ScheduleConstraints) models.FeasibilityReport {
	if conflicts == nil {
		conflicts = DetectConflicts(courses)
	}

	report := models.FeasibilityReport{
		ConflictCounts: map[models.ConflictSeverity]int{},
		Penalties:      map[string]float64{},
	}
	difficultySum := 0
	for _, course := range courses {
		report.TotalCredits += credits(course)
		difficultySum += Difficulty(course)
	}
	report.TotalHoursPerWeek = TotalHours(courses)

	if over := report.TotalCredits - float64(MaxCredits(c)); over > 0 {
		report.Penalties[PenaltyCredits] = creditOverPenalty * over
	}
	if over := report.TotalHoursPerWeek - weeklyHoursCeiling; over > 0 {
		report.Penalties[PenaltyWorkload] = round2(hourOverPenalty * over)
	}
	conflictPenalty := 0.0
	for _, conflict := range conflicts {
		report.ConflictCounts[conflict.Severity]++
		conflictPenalty += severityPenalties[conflict.Severity]
	}
	if conflictPenalty > 0 {
		report.Penalties[PenaltyConflicts] = conflictPenalty
	}
	if len(courses) > 0 {
		report.AverageDifficulty = round2(float64(difficultySum) / float64(len(courses)))
		if deviation := math.Abs(report.AverageDifficulty - targetDifficulty); deviation > 0 {
			report.Penalties[PenaltyDifficulty] = round2(difficultyPenalty * deviation)
		}
	}

	score := maxScore
	for _, penalty := range report.Penalties {
		score -= penalty
	}
	report.Score = round2(math.Max(0, math.Min(maxScore, score)))
	return report
}
