package models

import "time"

// RunStatus represents the status of an extract or filter run.
type RunStatus string

const (
	// StatusPending indicates the run was recorded but has not started.
	StatusPending RunStatus = "pending"
	// StatusRunning indicates the external tool is currently running.
	StatusRunning RunStatus = "running"
	// StatusSuccess indicates the run completed successfully.
	StatusSuccess RunStatus = "success"
	// StatusFailed indicates the run failed.
	StatusFailed RunStatus = "failed"
)

// RunAction names the front end action a run belongs to.
type RunAction string

const (
	ActionExtract RunAction = "extract"
	ActionFilter  RunAction = "filter"
)

// Run is a single invocation of the external tool, kept in the history
// database.
type Run struct {
	CreatedAt  time.Time  `json:"created_at"`
	ExitCode   *int       `json:"exit_code"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	ID         string     `json:"id"`
	Action     RunAction  `json:"action"`
	Status     RunStatus  `json:"status"`
	BagPath    string     `json:"bag_path"`
	OutputPath string     `json:"output_path"`
	Command    string     `json:"command"`
	Output     string     `json:"output"`
}
