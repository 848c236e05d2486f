package models

import "time"

// OptimizeJobStatus captures background optimization lifecycle states.
type OptimizeJobStatus string

const (
	OptimizeJobQueued     OptimizeJobStatus = "QUEUED"
	OptimizeJobProcessing OptimizeJobStatus = "PROCESSING"
	OptimizeJobFinished   OptimizeJobStatus = "FINISHED"
	OptimizeJobFailed     OptimizeJobStatus = "FAILED"
)

// OptimizeJob tracks an optimizer run requested in the background.
type OptimizeJob struct {
	ID           string            `json:"id"`
	PlanID       string            `json:"planId"`
	RequestedBy  string            `json:"requestedBy,omitempty"`
	Status       OptimizeJobStatus `json:"status"`
	Revision     int               `json:"revision,omitempty"`
	ErrorMessage *string           `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	FinishedAt   *time.Time        `json:"finishedAt,omitempty"`
}
