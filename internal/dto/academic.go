package dto

import "github.com/noah-isme/weekplan-api/internal/models"

// CourseSetRequest carries a course set for conflict or workload analysis.
type CourseSetRequest struct {
	Courses []models.Course `json:"courses" validate:"max=200,dive"`
}

// RecommendationRequest asks for candidate course recommendations.
type RecommendationRequest struct {
	Current            []models.Course             `json:"current" validate:"max=200,dive"`
	Candidates         []models.Course             `json:"candidates" validate:"required,min=1,max=500,dive"`
	Completed          []string                    `json:"completed"`
	JustCompleted      []string                    `json:"justCompleted"`
	DegreeRequirements []string                    `json:"degreeRequirements"`
	Constraints        *models.ScheduleConstraints `json:"constraints"`
}

// FeasibilityRequest scores a semester course set.
type FeasibilityRequest struct {
	Courses     []models.Course             `json:"courses" validate:"max=200,dive"`
	Constraints *models.ScheduleConstraints `json:"constraints"`
}

// WorkloadResponse lists per-course estimates with the weekly total.
type WorkloadResponse struct {
	Courses    []models.CourseWorkload `json:"courses"`
	TotalHours float64                 `json:"totalHoursPerWeek"`
}

// CourseAnalysisResponse bundles every analysis over a stored course set.
type CourseAnalysisResponse struct {
	Conflicts   []models.CourseConflict  `json:"conflicts"`
	Workload    WorkloadResponse         `json:"workload"`
	Feasibility models.FeasibilityReport `json:"feasibility"`
}
