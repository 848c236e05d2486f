package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RecurringTimeSlot is a weekly meeting of a course in 24h HH:MM.
type RecurringTimeSlot struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

// RecurringSchedule is the list of weekly meetings persisted as JSONB.
type RecurringSchedule []RecurringTimeSlot

// Value marshals the schedule for persistence.
func (s RecurringSchedule) Value() (driver.Value, error) {
	if s == nil {
		s = RecurringSchedule{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal course schedule: %w", err)
	}
	return data, nil
}

// Scan unmarshals the schedule from JSONB.
func (s *RecurringSchedule) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan course schedule: %w", err)
	}
	if len(data) == 0 {
		*s = RecurringSchedule{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// CourseLocation identifies where a course meets.
type CourseLocation struct {
	Building string `json:"building"`
	Room     string `json:"room"`
}

// Value marshals the location for persistence.
func (l CourseLocation) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan unmarshals the location from JSONB.
func (l *CourseLocation) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan course location: %w", err)
	}
	if len(data) == 0 {
		*l = CourseLocation{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// CourseMetadata carries the academic attributes used for workload estimates.
type CourseMetadata struct {
	CreditHours   float64  `json:"creditHours" validate:"min=0,max=12"`
	Difficulty    int      `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Department    string   `json:"department"`
	Prerequisites []string `json:"prerequisites"`
}

// Value marshals the metadata for persistence.
func (m CourseMetadata) Value() (driver.Value, error) {
	if m.Prerequisites == nil {
		m.Prerequisites = []string{}
	}
	return json.Marshal(m)
}

// Scan unmarshals the metadata from JSONB.
func (m *CourseMetadata) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan course metadata: %w", err)
	}
	if len(data) == 0 {
		*m = CourseMetadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Course is an academic course with its weekly meetings.
type Course struct {
	ID         string            `db:"id" json:"id"`
	OwnerID    string            `db:"owner_id" json:"-"`
	CourseCode string            `db:"course_code" json:"courseCode" validate:"required"`
	Name       string            `db:"name" json:"name"`
	Schedule   RecurringSchedule `db:"schedule" json:"schedule" validate:"dive"`
	Location   CourseLocation    `db:"location" json:"location"`
	Metadata   CourseMetadata    `db:"metadata" json:"metadata"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt,omitempty"`
}

// ConflictType classifies a course conflict.
type ConflictType string

const (
	ConflictTimeOverlap         ConflictType = "time_overlap"
	ConflictLocation            ConflictType = "location_conflict"
	ConflictPrerequisiteMissing ConflictType = "prerequisite_missing"
)

// ConflictSeverity ranks conflicts for feasibility scoring.
type ConflictSeverity string

const (
	SeverityLow      ConflictSeverity = "low"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityHigh     ConflictSeverity = "high"
	SeverityCritical ConflictSeverity = "critical"
)

// CourseConflict is a derived finding over a course set.
type CourseConflict struct {
	Type           ConflictType     `json:"type"`
	Severity       ConflictSeverity `json:"severity"`
	Courses        []Course         `json:"courses"`
	Description    string           `json:"description"`
	Suggestions    []string         `json:"suggestions"`
	AutoResolvable bool             `json:"autoResolvable"`
}

// AssignmentLoad buckets expected assignment volume.
type AssignmentLoad string

const (
	AssignmentLight    AssignmentLoad = "light"
	AssignmentModerate AssignmentLoad = "moderate"
	AssignmentHeavy    AssignmentLoad = "heavy"
)

// ExamFrequency buckets expected exam cadence.
type ExamFrequency string

const (
	ExamLow      ExamFrequency = "low"
	ExamModerate ExamFrequency = "moderate"
	ExamHigh     ExamFrequency = "high"
)

// CourseWorkload is the effort estimate for one course.
type CourseWorkload struct {
	CourseID              string         `json:"courseId"`
	EstimatedHoursPerWeek float64        `json:"estimatedHoursPerWeek"`
	Difficulty            int            `json:"difficulty"`
	AssignmentLoad        AssignmentLoad `json:"assignmentLoad"`
	ExamFrequency         ExamFrequency  `json:"examFrequency"`
	GroupWorkPercentage   int            `json:"groupWorkPercentage"`
}

// CourseRecommendation proposes adding a candidate course.
type CourseRecommendation struct {
	CourseID   string  `json:"courseId"`
	CourseCode string  `json:"courseCode"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
	Priority   string  `json:"priority"`
}

// FeasibilityReport explains a semester feasibility score.
type FeasibilityReport struct {
	Score             float64                  `json:"score"`
	TotalCredits      float64                  `json:"totalCredits"`
	TotalHoursPerWeek float64                  `json:"totalHoursPerWeek"`
	AverageDifficulty float64                  `json:"averageDifficulty"`
	ConflictCounts    map[ConflictSeverity]int `json:"conflictCounts"`
	Penalties         map[string]float64       `json:"penalties"`
}
