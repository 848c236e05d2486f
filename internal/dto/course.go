package dto

import "github.com/noah-isme/weekplan-api/internal/models"

// UpsertCourseRequest creates or replaces a stored course keyed by course code.
type UpsertCourseRequest struct {
	CourseCode string                     `json:"courseCode" validate:"required,max=32"`
	Name       string                     `json:"name" validate:"max=200"`
	Schedule   []models.RecurringTimeSlot `json:"schedule" validate:"max=14,dive"`
	Location   models.CourseLocation      `json:"location"`
	Metadata   models.CourseMetadata      `json:"metadata"`
}

// ImportCoursesResponse summarises an ICS import.
type ImportCoursesResponse struct {
	Imported []models.Course `json:"imported"`
	Skipped  int             `json:"skipped"`
}
