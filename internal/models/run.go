package models

import "time"

// ProjectResult is the outcome of benchmarking one project directory.
type ProjectResult struct {
	Directory       string             `json:"directory"`
	ProjectRevision string             `json:"project_revision,omitempty"`
	Results         *AggregatedResults `json:"results"`
	Reports         []string           `json:"reports"`
}

// RunResult summarizes a full invocation across all project directories.
type RunResult struct {
	RunID            string          `json:"run_id"`
	Success          bool            `json:"success"`
	Failures         []FailureInfo   `json:"failures"`
	Projects         []ProjectResult `json:"projects"`
	StartedAt        time.Time       `json:"started_at"`
	EndedAt          time.Time       `json:"ended_at"`
	TotalDurationSec float64         `json:"total_duration_sec"`
}
