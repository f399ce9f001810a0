package models

import "time"

// AnalysisTask represents a background timeline job
type AnalysisTask struct {
	ID int64 `json:"id" db:"id"`

	// Task identification
	SkillName string `json:"skill_name" db:"skill_name"` // timeline_regeneration, trip_reclassification
	UserID    string `json:"user_id" db:"user_id"`

	// Status
	Status          string  `json:"status" db:"status"` // pending, running, completed, failed
	ProgressPercent float64 `json:"progress_percent" db:"progress_percent"`

	// Input parameters
	ParamsJSON string `json:"params_json,omitempty" db:"params_json"`

	// Execution info
	TotalPoints     int `json:"total_points,omitempty" db:"total_points"`
	ProcessedPoints int `json:"processed_points" db:"processed_points"`

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON object with summary statistics
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// IsTerminal reports whether the task can no longer change state
func (t *AnalysisTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}
