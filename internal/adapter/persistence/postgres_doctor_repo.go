package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// PostgresDoctorRepository implements DoctorRepository using PostgreSQL
type PostgresDoctorRepository struct {
	db *sql.DB
}

// NewPostgresDoctorRepository creates a new PostgreSQL doctor repository
func NewPostgresDoctorRepository(db *sql.DB) ports.DoctorRepository {
	return &PostgresDoctorRepository{db: db}
}

// FindByID retrieves a doctor by ID
func (r *PostgresDoctorRepository) FindByID(ctx context.Context, id string) (*domain.Doctor, error) {
	query := `
		SELECT id, clinic_name, email, status, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`

	var doctor domain.Doctor
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doctor.ID,
		&doctor.ClinicName,
		&doctor.Email,
		&doctor.Status,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to find doctor: %w", err)
	}

	return &doctor, nil
}

// Update writes the mutable fields of a doctor
func (r *PostgresDoctorRepository) Update(ctx context.Context, doctor *domain.Doctor) error {
	query := `
		UPDATE doctors
		SET clinic_name = $2, email = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.ClinicName,
		doctor.Email,
		string(doctor.Status),
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrDoctorNotFound
	}

	return nil
}
