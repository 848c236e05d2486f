package dto

import "github.com/noah-isme/weekplan-api/internal/models"

// UpdatePreferencesRequest replaces the caller's stored constraints. Stored preferences
// are validated strictly, unlike ad-hoc plan requests.
type UpdatePreferencesRequest struct {
	StartDay              string   `json:"startDay" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime             string   `json:"startTime" validate:"omitempty,datetime=15:04"`
	BedTime               string   `json:"bedTime" validate:"omitempty,datetime=15:04"`
	DesiredSleepHours     float64  `json:"desiredSleepHours" validate:"omitempty,min=4,max=12"`
	WorkDays              []string `json:"workDays" validate:"omitempty,max=7,unique,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	WorkStartTime         string   `json:"workStartTime" validate:"omitempty,datetime=15:04"`
	WorkEndTime           string   `json:"workEndTime" validate:"omitempty,datetime=15:04"`
	StudyTimePreference   string   `json:"studyTimePreference" validate:"omitempty,oneof=morning afternoon evening night flexible"`
	AvoidEarlyClasses     bool     `json:"avoidEarlyClasses"`
	EarlyClassThreshold   string   `json:"earlyClassThreshold" validate:"omitempty,datetime=15:04"`
	AvoidLateClasses      bool     `json:"avoidLateClasses"`
	LateClassThreshold    string   `json:"lateClassThreshold" validate:"omitempty,datetime=15:04"`
	MaxCreditsPerSemester int      `json:"maxCreditsPerSemester" validate:"omitempty,min=1,max=40"`
	DifficultyBalance     bool     `json:"difficultyBalance"`
}

// Constraints converts the request into the planner's constraints record.
func (r UpdatePreferencesRequest) Constraints() models.ScheduleConstraints {
	return models.ScheduleConstraints{
		StartDay:              r.StartDay,
		StartTime:             r.StartTime,
		BedTime:               r.BedTime,
		DesiredSleepHours:     r.DesiredSleepHours,
		WorkDays:              append([]string(nil), r.WorkDays...),
		WorkStartTime:         r.WorkStartTime,
		WorkEndTime:           r.WorkEndTime,
		StudyTimePreference:   models.StudyTimePreference(r.StudyTimePreference),
		AvoidEarlyClasses:     r.AvoidEarlyClasses,
		EarlyClassThreshold:   r.EarlyClassThreshold,
		AvoidLateClasses:      r.AvoidLateClasses,
		LateClassThreshold:    r.LateClassThreshold,
		MaxCreditsPerSemester: r.MaxCreditsPerSemester,
		DifficultyBalance:     r.DifficultyBalance,
	}
}
