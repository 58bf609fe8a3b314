package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction tags what kind of privileged mutation happened
type AuditAction string

const (
	AuditActionUpdateWorkflow    AuditAction = "UPDATE_WORKFLOW"
	AuditActionTriggerWorkflow   AuditAction = "TRIGGER_WORKFLOW"
	AuditActionPauseWorkflow     AuditAction = "PAUSE_WORKFLOW"
	AuditActionResumeWorkflow    AuditAction = "RESUME_WORKFLOW"
	AuditActionSuspendDoctor     AuditAction = "SUSPEND_DOCTOR"
	AuditActionReactivateDoctor  AuditAction = "REACTIVATE_DOCTOR"
	AuditActionUpdatePermissions AuditAction = "UPDATE_ADMIN_PERMISSIONS"
	AuditActionDeactivateAdmin   AuditAction = "DEACTIVATE_ADMIN"
)

// AuditEntry is an immutable record of a privileged mutation. Entries are
// never edited or removed; the audit log is the source of truth for who
// did what.
type AuditEntry struct {
	ID           string            `json:"id"`
	ActorID      string            `json:"actor_id"`
	ActorEmail   string            `json:"actor_email"`
	Action       AuditAction       `json:"action"`
	ResourceType Resource          `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Changes      []FieldChange     `json:"changes,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewAuditEntry builds an entry attributed to the given actor
func NewAuditEntry(actor *Actor, action AuditAction, resourceType Resource, resourceID string) *AuditEntry {
	return &AuditEntry{
		ID:           uuid.New().String(),
		ActorID:      actor.ID,
		ActorEmail:   actor.Email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithChanges attaches the field-level diff
func (e *AuditEntry) WithChanges(changes []FieldChange) *AuditEntry {
	e.Changes = changes
	return e
}

// WithMetadata attaches free-form context
func (e *AuditEntry) WithMetadata(metadata map[string]string) *AuditEntry {
	e.Metadata = metadata
	return e
}

// AuditFilter narrows an audit query. Exactly one of ResourceID or
// ActorID is normally set; results are always time-descending.
type AuditFilter struct {
	ResourceID string
	ActorID    string
	Limit      int
}
