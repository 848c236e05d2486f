package dto

import "github.com/noah-isme/weekplan-api/internal/models"

// CreatePlanRequest synthesizes a new plan. Without constraints the caller's stored
// preferences (or the defaults) are used; malformed fields fall back to defaults.
type CreatePlanRequest struct {
	Constraints *models.ScheduleConstraints `json:"constraints"`
	Optimize    bool                        `json:"optimize"`
	Suggest     bool                        `json:"suggest"`
}

// TransformPlanRequest runs the optimizer or advisor over a stored plan. A non-zero
// revision must match the stored plan.
type TransformPlanRequest struct {
	Revision    int                         `json:"revision" validate:"omitempty,min=1"`
	Constraints *models.ScheduleConstraints `json:"constraints"`
}

// ExportPlanQuery selects the rendered file format.
type ExportPlanQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx CSV PDF XLSX"`
}

// ExportedFile is a rendered plan download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
