package domain

import (
	"time"
)

// DoctorStatus represents the standing of a doctor tenant
type DoctorStatus string

const (
	DoctorStatusActive    DoctorStatus = "active"
	DoctorStatusSuspended DoctorStatus = "suspended"
)

// Doctor is a tenant of the platform. The core only needs enough of the
// profile to suspend, reactivate, and target automation at doctors.
type Doctor struct {
	ID         string       `json:"id"`
	ClinicName string       `json:"clinic_name"`
	Email      string       `json:"email"`
	Status     DoctorStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Suspend takes the doctor out of automation rotation
func (d *Doctor) Suspend() error {
	if d.Status == DoctorStatusSuspended {
		return ErrDoctorAlreadySuspended
	}
	d.Status = DoctorStatusSuspended
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Reactivate restores a suspended doctor
func (d *Doctor) Reactivate() error {
	if d.Status == DoctorStatusActive {
		return ErrDoctorAlreadyActive
	}
	d.Status = DoctorStatusActive
	d.UpdatedAt = time.Now().UTC()
	return nil
}

var (
	ErrDoctorNotFound         = NewDomainError("doctor not found")
	ErrDoctorAlreadySuspended = NewDomainError("doctor is already suspended")
	ErrDoctorAlreadyActive    = NewDomainError("doctor is already active")
)
