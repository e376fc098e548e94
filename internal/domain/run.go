package domain

import "time"

// Run represents one inventory collection run against an enterprise.
type Run struct {
	ID         string     `json:"id"`
	Enterprise string     `json:"enterprise"`
	Status     string     `json:"status"` // "in_progress", "completed", "failed"
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Organizations int `json:"organizations"`
	Repositories  int `json:"repositories"`
	Warnings      int `json:"warnings"`
}

const (
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)
