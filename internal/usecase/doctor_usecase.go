package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
	"github.com/practika/practika/pkg/apperror"
)

// DoctorUseCase covers the privileged tenant mutations the operator
// console exposes. Both mutations are audited.
type DoctorUseCase struct {
	doctorRepo ports.DoctorRepository
	recorder   *AuditRecorder
}

// NewDoctorUseCase creates a new doctor use case
func NewDoctorUseCase(doctorRepo ports.DoctorRepository, recorder *AuditRecorder) *DoctorUseCase {
	return &DoctorUseCase{doctorRepo: doctorRepo, recorder: recorder}
}

// SuspendDoctor takes a doctor tenant out of automation rotation
func (uc *DoctorUseCase) SuspendDoctor(ctx context.Context, actor *domain.Actor, doctorID, reason string) error {
	if err := authorize(actor, domain.ResourceDoctors, domain.ActionManage); err != nil {
		return err
	}
	if doctorID == "" {
		return apperror.NewInvalidArgument("doctor ID is required")
	}

	doctor, err := uc.findDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := doctor.Suspend(); err != nil {
		return apperror.NewInvalidArgument(err.Error())
	}

	if err := uc.doctorRepo.Update(ctx, doctor); err != nil {
		return fmt.Errorf("failed to suspend doctor: %w", err)
	}

	entry := domain.NewAuditEntry(actor, domain.AuditActionSuspendDoctor, domain.ResourceDoctors, doctorID).
		WithChanges([]domain.FieldChange{{Field: "status", OldValue: domain.DoctorStatusActive, NewValue: domain.DoctorStatusSuspended}})
	if reason != "" {
		entry.WithMetadata(map[string]string{"reason": reason})
	}
	uc.recorder.Record(ctx, entry)
	return nil
}

// ReactivateDoctor restores a suspended doctor tenant
func (uc *DoctorUseCase) ReactivateDoctor(ctx context.Context, actor *domain.Actor, doctorID string) error {
	if err := authorize(actor, domain.ResourceDoctors, domain.ActionManage); err != nil {
		return err
	}
	if doctorID == "" {
		return apperror.NewInvalidArgument("doctor ID is required")
	}

	doctor, err := uc.findDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := doctor.Reactivate(); err != nil {
		return apperror.NewInvalidArgument(err.Error())
	}

	if err := uc.doctorRepo.Update(ctx, doctor); err != nil {
		return fmt.Errorf("failed to reactivate doctor: %w", err)
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, domain.AuditActionReactivateDoctor, domain.ResourceDoctors, doctorID).
		WithChanges([]domain.FieldChange{{Field: "status", OldValue: domain.DoctorStatusSuspended, NewValue: domain.DoctorStatusActive}}))
	return nil
}

func (uc *DoctorUseCase) findDoctor(ctx context.Context, doctorID string) (*domain.Doctor, error) {
	doctor, err := uc.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, apperror.NewNotFound("doctor not found")
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}
