package domain

import (
	"strings"
	"testing"
)

func TestNewRun(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{DoctorIDs: []string{"doc-1"}, DryRun: true})

	if run.ID == "" {
		t.Error("Expected run ID to be generated")
	}

	if run.WorkflowID != "wf-1" {
		t.Errorf("Expected workflow ID wf-1, got %s", run.WorkflowID)
	}

	if run.Status != RunStatusRunning {
		t.Errorf("Expected status %s, got %s", RunStatusRunning, run.Status)
	}

	if run.DoctorsProcessed != 0 || run.SuccessCount != 0 || run.FailureCount != 0 {
		t.Errorf("Expected zeroed counters, got %d/%d/%d", run.DoctorsProcessed, run.SuccessCount, run.FailureCount)
	}

	if len(run.Logs) != 1 {
		t.Fatalf("Expected exactly one seeded log line, got %d", len(run.Logs))
	}

	if run.Logs[0].Level != LogLevelInfo {
		t.Errorf("Expected seeded log level %s, got %s", LogLevelInfo, run.Logs[0].Level)
	}

	if !strings.Contains(run.Logs[0].Message, "manual") || !strings.Contains(run.Logs[0].Message, "admin-1") {
		t.Errorf("Expected seeded log line to attribute the manual trigger, got %q", run.Logs[0].Message)
	}

	if run.EndedAt != nil {
		t.Error("Expected EndedAt to be nil for a fresh run")
	}
}

func TestNewRunScheduled(t *testing.T) {
	run := NewRun("wf-1", "scheduler", false, TriggerOptions{})

	if run.Manual {
		t.Error("Expected scheduled run to not be manual")
	}

	if !strings.Contains(run.Logs[0].Message, "scheduled") {
		t.Errorf("Expected seeded log line to mention scheduled mode, got %q", run.Logs[0].Message)
	}
}

func TestProgressDelta_Validate(t *testing.T) {
	tests := []struct {
		name     string
		delta    ProgressDelta
		expected error
	}{
		{"valid delta", ProgressDelta{DoctorsProcessed: 2, SuccessCount: 1, FailureCount: 1}, nil},
		{"zero delta", ProgressDelta{}, nil},
		{"negative processed", ProgressDelta{DoctorsProcessed: -1}, ErrNegativeDelta},
		{"negative success", ProgressDelta{SuccessCount: -3}, ErrNegativeDelta},
		{"negative failure", ProgressDelta{FailureCount: -1}, ErrNegativeDelta},
		{"log line without level", ProgressDelta{LogMessage: "step done"}, ErrMissingLogLevel},
		{"log line with level", ProgressDelta{LogLevel: LogLevelInfo, LogMessage: "step done"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.delta.Validate(); err != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestRun_ApplyProgress(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{})

	err := run.ApplyProgress(ProgressDelta{
		DoctorsProcessed: 3,
		SuccessCount:     2,
		FailureCount:     1,
		LogLevel:         LogLevelWarn,
		LogMessage:       "one doctor skipped",
		Error:            "doctor doc-9 unreachable",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if run.DoctorsProcessed != 3 || run.SuccessCount != 2 || run.FailureCount != 1 {
		t.Errorf("Expected counters 3/2/1, got %d/%d/%d", run.DoctorsProcessed, run.SuccessCount, run.FailureCount)
	}

	if len(run.Logs) != 2 {
		t.Errorf("Expected 2 log lines, got %d", len(run.Logs))
	}

	if len(run.Errors) != 1 {
		t.Errorf("Expected 1 error entry, got %d", len(run.Errors))
	}

	// deltas accumulate
	if err := run.ApplyProgress(ProgressDelta{DoctorsProcessed: 2, SuccessCount: 2}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if run.DoctorsProcessed != 5 || run.SuccessCount != 4 {
		t.Errorf("Expected accumulated counters 5/4, got %d/%d", run.DoctorsProcessed, run.SuccessCount)
	}
}

func TestRun_ApplyProgressTerminal(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{})
	if _, err := run.Finalize(RunStatusCompleted); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err := run.ApplyProgress(ProgressDelta{DoctorsProcessed: 1})
	if err != ErrRunTerminal {
		t.Errorf("Expected ErrRunTerminal, got %v", err)
	}
}

func TestRun_Finalize(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{})

	changed, err := run.Finalize(RunStatusCompleted)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !changed {
		t.Error("Expected first finalize to report a change")
	}
	if run.Status != RunStatusCompleted {
		t.Errorf("Expected status %s, got %s", RunStatusCompleted, run.Status)
	}
	if run.EndedAt == nil {
		t.Error("Expected EndedAt to be set")
	}
}

func TestRun_FinalizeIdempotent(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{})

	if _, err := run.Finalize(RunStatusFailed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	endedAt := run.EndedAt

	// second finalize with a different status is a no-op, first status wins
	changed, err := run.Finalize(RunStatusCompleted)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if changed {
		t.Error("Expected second finalize to be a no-op")
	}
	if run.Status != RunStatusFailed {
		t.Errorf("Expected status to stay %s, got %s", RunStatusFailed, run.Status)
	}
	if run.EndedAt != endedAt {
		t.Error("Expected EndedAt to be unchanged by the second finalize")
	}
}

func TestRun_FinalizeRejectsNonTerminalStatus(t *testing.T) {
	run := NewRun("wf-1", "admin-1", true, TriggerOptions{})

	if _, err := run.Finalize(RunStatusRunning); err != ErrInvalidRunStatus {
		t.Errorf("Expected ErrInvalidRunStatus, got %v", err)
	}

	if _, err := run.Finalize(RunStatus("cancelled")); err != ErrInvalidRunStatus {
		t.Errorf("Expected ErrInvalidRunStatus, got %v", err)
	}
}

func TestRunStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		terminal bool
	}{
		{RunStatusRunning, false},
		{RunStatusCompleted, true},
		{RunStatusFailed, true},
	}

	for _, tt := range tests {
		if tt.status.Terminal() != tt.terminal {
			t.Errorf("Expected %s terminal=%t", tt.status, tt.terminal)
		}
	}
}
