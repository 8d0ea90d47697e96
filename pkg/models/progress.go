package models

import "time"

// StepStatus defines the possible states of a progress step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusError      StepStatus = "error"
)

// ProgressStep is one entry in a run's chronological step log.
type ProgressStep struct {
	Message   string     `json:"message"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// ProgressState is owned by a single pipeline run and discarded at run end.
// Percentage is monotonically non-decreasing; steps are appended in strict
// chronological order and never reordered or removed.
type ProgressState struct {
	Percentage                int            `json:"percentage"`
	Steps                     []ProgressStep `json:"steps"`
	StartTime                 time.Time      `json:"start_time"`
	EstimatedSecondsRemaining *int           `json:"estimated_seconds_remaining,omitempty"`
}
