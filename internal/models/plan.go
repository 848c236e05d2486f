package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Reserved activity contents and the categories used by the planner.
const (
	ContentFreeTime = "Free Time"
	ContentSleep    = "Sleep"

	CategorySleep    = "Sleep"
	CategoryWork     = "Work"
	CategoryStudy    = "Study"
	CategoryMeal     = "Meal"
	CategoryPersonal = "Personal"
	CategoryExercise = "Exercise"
	CategoryPlanning = "Planning"
)

// Activity occupies exactly one (slot, day) cell of a grid.
type Activity struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// FreeTime returns the unassigned activity.
func FreeTime() Activity {
	return Activity{Content: ContentFreeTime, Category: CategoryPersonal}
}

// IsFreeTime reports whether the cell is unassigned.
func (a Activity) IsFreeTime() bool {
	return a.Content == ContentFreeTime
}

// ScheduleRow is one hour-labelled row of the grid.
type ScheduleRow struct {
	Time       string              `json:"time"`
	Activities map[string]Activity `json:"activities"`
}

// GridStatistics summarises how the week is spent, in hours.
type GridStatistics struct {
	SleepHours    int            `json:"sleepHours"`
	WorkHours     int            `json:"workHours"`
	StudyHours    int            `json:"studyHours"`
	FreeHours     int            `json:"freeHours"`
	ExerciseHours int            `json:"exerciseHours"`
	ByCategory    map[string]int `json:"byCategory,omitempty"`
}

// GridMetadata is the envelope returned alongside every grid.
type GridMetadata struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Source      string              `json:"source"`
	Constraints ScheduleConstraints `json:"constraints"`
	Statistics  GridStatistics      `json:"statistics"`
}

// ScheduleGrid is the week x hour activity table.
type ScheduleGrid struct {
	Days     []string      `json:"days"`
	Rows     []ScheduleRow `json:"rows"`
	Metadata GridMetadata  `json:"metadata"`
}

// StudyTimePreference enumerates preferred study windows.
type StudyTimePreference string

const (
	StudyMorning   StudyTimePreference = "morning"
	StudyAfternoon StudyTimePreference = "afternoon"
	StudyEvening   StudyTimePreference = "evening"
	StudyNight     StudyTimePreference = "night"
	StudyFlexible  StudyTimePreference = "flexible"
)

// ScheduleConstraints is the user preference record consumed by the planner and analyzers.
type ScheduleConstraints struct {
	StartDay              string              `json:"startDay"`
	StartTime             string              `json:"startTime"`
	BedTime               string              `json:"bedTime"`
	DesiredSleepHours     float64             `json:"desiredSleepHours"`
	WorkDays              []string            `json:"workDays"`
	WorkStartTime         string              `json:"workStartTime"`
	WorkEndTime           string              `json:"workEndTime"`
	StudyTimePreference   StudyTimePreference `json:"studyTimePreference"`
	AvoidEarlyClasses     bool                `json:"avoidEarlyClasses"`
	EarlyClassThreshold   string              `json:"earlyClassThreshold"`
	AvoidLateClasses      bool                `json:"avoidLateClasses"`
	LateClassThreshold    string              `json:"lateClassThreshold"`
	MaxCreditsPerSemester int                 `json:"maxCreditsPerSemester"`
	DifficultyBalance     bool                `json:"difficultyBalance"`
}

// Value marshals constraints to JSON for persistence.
func (c ScheduleConstraints) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule constraints: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the constraints.
func (c *ScheduleConstraints) Scan(value interface{}) error {
	data, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan schedule constraints: %w", err)
	}
	if len(data) == 0 {
		*c = ScheduleConstraints{}
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal schedule constraints: %w", err)
	}
	return nil
}

// SchedulePreference stores a user's constraints record.
type SchedulePreference struct {
	ID          string              `db:"id" json:"id"`
	UserID      string              `db:"user_id" json:"user_id"`
	Constraints ScheduleConstraints `db:"constraints" json:"constraints"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// Plan is a generated grid kept in the expiring plan store.
type Plan struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"ownerId,omitempty"`
	Revision    int                 `json:"revision"`
	Grid        ScheduleGrid        `json:"grid"`
	Constraints ScheduleConstraints `json:"constraints"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
