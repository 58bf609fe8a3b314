package domain

import (
	"time"
)

// WorkflowType represents the kind of automation a workflow performs
type WorkflowType string

const (
	WorkflowTypeGMBPost     WorkflowType = "gmb_post"
	WorkflowTypeSocialPost  WorkflowType = "social_post"
	WorkflowTypeReminder    WorkflowType = "reminder"
	WorkflowTypeReviewReply WorkflowType = "review_reply"
)

// WorkflowStatus represents whether a workflow is eligible for scheduling
type WorkflowStatus string

const (
	WorkflowStatusActive WorkflowStatus = "active"
	WorkflowStatusPaused WorkflowStatus = "paused"
)

// Schedule holds the cadence metadata for a workflow
type Schedule struct {
	Cron     string `json:"cron,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	HourUTC  int    `json:"hour_utc"`
}

// Workflow is a persistent automation definition. Workflows are owned by
// the platform, long-lived, and never hard-deleted.
type Workflow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      WorkflowType   `json:"type"`
	Status    WorkflowStatus `json:"status"`
	Schedule  Schedule       `json:"schedule"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WorkflowUpdate carries the mutable fields of an admin update.
// Nil pointers mean "leave unchanged".
type WorkflowUpdate struct {
	Name     *string         `json:"name,omitempty"`
	Status   *WorkflowStatus `json:"status,omitempty"`
	Schedule *Schedule       `json:"schedule,omitempty"`
}

// Empty reports whether the update would change nothing
func (u WorkflowUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil && u.Schedule == nil
}

// FieldChange records one field-level delta for the audit trail
type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value,omitempty"`
	NewValue interface{} `json:"new_value"`
}

// Apply writes the update onto the workflow and returns the per-field
// changes with old and new values. Identity fields (id, creation time)
// are not reachable through WorkflowUpdate by construction.
func (w *Workflow) Apply(update WorkflowUpdate) ([]FieldChange, error) {
	if update.Empty() {
		return nil, ErrEmptyUpdate
	}

	var changes []FieldChange
	if update.Name != nil && *update.Name != w.Name {
		changes = append(changes, FieldChange{Field: "name", OldValue: w.Name, NewValue: *update.Name})
		w.Name = *update.Name
	}
	if update.Status != nil && *update.Status != w.Status {
		if *update.Status != WorkflowStatusActive && *update.Status != WorkflowStatusPaused {
			return nil, ErrInvalidWorkflowStatus
		}
		changes = append(changes, FieldChange{Field: "status", OldValue: w.Status, NewValue: *update.Status})
		w.Status = *update.Status
	}
	if update.Schedule != nil && *update.Schedule != w.Schedule {
		changes = append(changes, FieldChange{Field: "schedule", OldValue: w.Schedule, NewValue: *update.Schedule})
		w.Schedule = *update.Schedule
	}

	if len(changes) > 0 {
		w.UpdatedAt = time.Now().UTC()
	}
	return changes, nil
}

// Pause sets the workflow status to paused. In-flight runs are unaffected.
func (w *Workflow) Pause() error {
	if w.Status == WorkflowStatusPaused {
		return ErrWorkflowAlreadyPaused
	}
	w.Status = WorkflowStatusPaused
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Resume sets the workflow status back to active
func (w *Workflow) Resume() error {
	if w.Status == WorkflowStatusActive {
		return ErrWorkflowAlreadyActive
	}
	w.Status = WorkflowStatusActive
	w.UpdatedAt = time.Now().UTC()
	return nil
}

var (
	ErrWorkflowNotFound      = NewDomainError("workflow not found")
	ErrEmptyUpdate           = NewDomainError("update contains no fields")
	ErrInvalidWorkflowStatus = NewDomainError("invalid workflow status")
	ErrWorkflowAlreadyPaused = NewDomainError("workflow is already paused")
	ErrWorkflowAlreadyActive = NewDomainError("workflow is already active")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}
