package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

const defaultAuditLimit = 50

// AuditRecorder appends audit entries for privileged mutations. A failed
// append never fails the mutation that produced it: the entry is logged
// at error level and not retried.
type AuditRecorder struct {
	auditRepo ports.AuditRepository
	log       *logrus.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(auditRepo ports.AuditRepository, log *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{auditRepo: auditRepo, log: log}
}

// Record appends one entry. Call it exactly once per mutation.
func (r *AuditRecorder) Record(ctx context.Context, entry *domain.AuditEntry) {
	if err := r.auditRepo.Create(ctx, entry); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"audit_id":      entry.ID,
			"action":        entry.Action,
			"resource_type": entry.ResourceType,
			"resource_id":   entry.ResourceID,
			"actor_id":      entry.ActorID,
		}).Error("failed to append audit entry")
		return
	}
	r.log.WithFields(logrus.Fields{
		"audit_id":    entry.ID,
		"action":      entry.Action,
		"resource_id": entry.ResourceID,
		"actor_id":    entry.ActorID,
	}).Debug("audit entry recorded")
}

// AuditUseCase serves the read side of the audit log
type AuditUseCase struct {
	auditRepo ports.AuditRepository
}

// NewAuditUseCase creates a new audit use case
func NewAuditUseCase(auditRepo ports.AuditRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// ListEntries returns audit entries filtered by resource or actor,
// newest first
func (uc *AuditUseCase) ListEntries(ctx context.Context, actor *domain.Actor, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	if err := authorize(actor, domain.ResourceAuditLogs, domain.ActionView); err != nil {
		return nil, err
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}

	entries, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
