package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
	"github.com/practika/practika/pkg/apperror"
)

// AdminUseCase manages operator accounts. Permission matrices are only
// mutable by actors holding admins:manage, which in practice means super
// admins. Accounts are deactivated, never deleted.
type AdminUseCase struct {
	actorRepo ports.ActorRepository
	recorder  *AuditRecorder
	log       *logrus.Logger
}

// NewAdminUseCase creates a new admin use case
func NewAdminUseCase(actorRepo ports.ActorRepository, recorder *AuditRecorder, log *logrus.Logger) *AdminUseCase {
	return &AdminUseCase{actorRepo: actorRepo, recorder: recorder, log: log}
}

// ListAdmins returns all operator accounts
func (uc *AdminUseCase) ListAdmins(ctx context.Context, actor *domain.Actor) ([]*domain.Actor, error) {
	if err := authorize(actor, domain.ResourceAdmins, domain.ActionManage); err != nil {
		return nil, err
	}

	admins, err := uc.actorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// UpdatePermissions replaces an admin's permission matrix and audits the
// old and new matrices
func (uc *AdminUseCase) UpdatePermissions(ctx context.Context, actor *domain.Actor, adminID string, matrix domain.PermissionMatrix) error {
	if err := authorize(actor, domain.ResourceAdmins, domain.ActionManage); err != nil {
		return err
	}
	if adminID == "" {
		return apperror.NewInvalidArgument("admin ID is required")
	}
	if err := domain.ValidateMatrix(matrix); err != nil {
		return apperror.NewInvalidArgument(err.Error())
	}

	admin, err := uc.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	oldMatrix := admin.Permissions
	admin.SetPermissions(matrix)

	if err := uc.actorRepo.Update(ctx, admin); err != nil {
		return fmt.Errorf("failed to update admin permissions: %w", err)
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, domain.AuditActionUpdatePermissions, domain.ResourceAdmins, adminID).
		WithChanges([]domain.FieldChange{{Field: "permissions", OldValue: oldMatrix, NewValue: matrix}}))
	return nil
}

// DeactivateAdmin disables an operator account
func (uc *AdminUseCase) DeactivateAdmin(ctx context.Context, actor *domain.Actor, adminID string) error {
	if err := authorize(actor, domain.ResourceAdmins, domain.ActionManage); err != nil {
		return err
	}
	if adminID == "" {
		return apperror.NewInvalidArgument("admin ID is required")
	}
	if actor.ID == adminID {
		return apperror.NewInvalidArgument("cannot deactivate your own account")
	}

	admin, err := uc.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.Active {
		return apperror.NewInvalidArgument("admin is already deactivated")
	}

	admin.Deactivate()
	if err := uc.actorRepo.Update(ctx, admin); err != nil {
		return fmt.Errorf("failed to deactivate admin: %w", err)
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, domain.AuditActionDeactivateAdmin, domain.ResourceAdmins, adminID).
		WithChanges([]domain.FieldChange{{Field: "active", OldValue: true, NewValue: false}}))
	return nil
}

func (uc *AdminUseCase) findAdmin(ctx context.Context, adminID string) (*domain.Actor, error) {
	admin, err := uc.actorRepo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrActorNotFound) {
			return nil, apperror.NewNotFound("admin not found")
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}
