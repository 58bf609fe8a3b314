package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle state of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Terminal reports whether the status permits no further transitions
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// LogLevel for run log lines
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogLine is one append-only entry in a run's execution log
type LogLine struct {
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RunError is one entry in a run's ordered error list
type RunError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TriggerOptions narrows what a run operates on
type TriggerOptions struct {
	DoctorIDs []string `json:"doctor_ids,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// Run is one execution instance of a workflow. Counters and logs are
// append-only until the run reaches a terminal status, after which the
// record is immutable.
type Run struct {
	ID               string         `json:"id"`
	WorkflowID       string         `json:"workflow_id"`
	Status           RunStatus      `json:"status"`
	Manual           bool           `json:"manual"`
	TriggeredBy      string         `json:"triggered_by"`
	Options          TriggerOptions `json:"options"`
	DoctorsProcessed int            `json:"doctors_processed"`
	SuccessCount     int            `json:"success_count"`
	FailureCount     int            `json:"failure_count"`
	Logs             []LogLine      `json:"logs"`
	Errors           []RunError     `json:"errors"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
}

// NewRun creates a run in the running state with zeroed counters and a
// single seeded log line attributing the trigger.
func NewRun(workflowID, triggeredBy string, manual bool, options TriggerOptions) *Run {
	now := time.Now().UTC()
	mode := "scheduled"
	if manual {
		mode = "manual"
	}
	return &Run{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		Status:      RunStatusRunning,
		Manual:      manual,
		TriggeredBy: triggeredBy,
		Options:     options,
		Logs: []LogLine{{
			Level:     LogLevelInfo,
			Message:   fmt.Sprintf("run triggered (%s) by %s", mode, triggeredBy),
			Timestamp: now,
		}},
		StartedAt: now,
	}
}

// ProgressDelta is the increment a worker reports for a run. Counter
// fields are deltas, never absolute values.
type ProgressDelta struct {
	DoctorsProcessed int      `json:"doctors_processed"`
	SuccessCount     int      `json:"success_count"`
	FailureCount     int      `json:"failure_count"`
	LogLevel         LogLevel `json:"log_level,omitempty"`
	LogMessage       string   `json:"log_message,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// Validate rejects deltas that would decrease a counter
func (d ProgressDelta) Validate() error {
	if d.DoctorsProcessed < 0 || d.SuccessCount < 0 || d.FailureCount < 0 {
		return ErrNegativeDelta
	}
	if d.LogMessage != "" && d.LogLevel == "" {
		return ErrMissingLogLevel
	}
	return nil
}

// ApplyProgress folds a delta into the in-memory run. The storage layer
// performs the equivalent mutation atomically; this keeps the returned
// run consistent with what was written.
func (r *Run) ApplyProgress(delta ProgressDelta) error {
	if r.Status.Terminal() {
		return ErrRunTerminal
	}
	if err := delta.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	r.DoctorsProcessed += delta.DoctorsProcessed
	r.SuccessCount += delta.SuccessCount
	r.FailureCount += delta.FailureCount
	if delta.LogMessage != "" {
		r.Logs = append(r.Logs, LogLine{Level: delta.LogLevel, Message: delta.LogMessage, Timestamp: now})
	}
	if delta.Error != "" {
		r.Errors = append(r.Errors, RunError{Message: delta.Error, Timestamp: now})
	}
	return nil
}

// Finalize moves the run to a terminal status exactly once. Finalizing
// an already-terminal run is a no-op so racing workers stay harmless.
func (r *Run) Finalize(status RunStatus) (changed bool, err error) {
	if !status.Terminal() {
		return false, ErrInvalidRunStatus
	}
	if r.Status.Terminal() {
		return false, nil
	}
	now := time.Now().UTC()
	r.Status = status
	r.EndedAt = &now
	return true, nil
}

var (
	ErrRunNotFound      = NewDomainError("run not found")
	ErrRunTerminal      = NewDomainError("run is already terminal")
	ErrNegativeDelta    = NewDomainError("counter delta must not be negative")
	ErrMissingLogLevel  = NewDomainError("log line requires a level")
	ErrInvalidRunStatus = NewDomainError("run status must be completed or failed")
)
