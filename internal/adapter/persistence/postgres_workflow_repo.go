package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// PostgresWorkflowRepository implements WorkflowRepository using PostgreSQL
type PostgresWorkflowRepository struct {
	db *sql.DB
}

// NewPostgresWorkflowRepository creates a new PostgreSQL workflow repository
func NewPostgresWorkflowRepository(db *sql.DB) ports.WorkflowRepository {
	return &PostgresWorkflowRepository{db: db}
}

// Create saves a new workflow definition
func (r *PostgresWorkflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	query := `
		INSERT INTO workflows (id, name, type, status, schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	scheduleJSON, err := json.Marshal(workflow.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		string(workflow.Type),
		string(workflow.Status),
		scheduleJSON,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	return nil
}

// FindByID retrieves a workflow by its ID
func (r *PostgresWorkflowRepository) FindByID(ctx context.Context, id string) (*domain.Workflow, error) {
	query := `
		SELECT id, name, type, status, schedule, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}
	return workflow, nil
}

// List retrieves all workflows ordered by name ascending
func (r *PostgresWorkflowRepository) List(ctx context.Context) ([]*domain.Workflow, error) {
	query := `
		SELECT id, name, type, status, schedule, created_at, updated_at
		FROM workflows
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*domain.Workflow
	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

// Update writes the mutable fields of an existing workflow. Identity
// fields (id, created_at) are never part of the statement.
func (r *PostgresWorkflowRepository) Update(ctx context.Context, workflow *domain.Workflow) error {
	query := `
		UPDATE workflows
		SET name = $2, status = $3, schedule = $4, updated_at = $5
		WHERE id = $1
	`

	scheduleJSON, err := json.Marshal(workflow.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		string(workflow.Status),
		scheduleJSON,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkflow(row rowScanner) (*domain.Workflow, error) {
	var workflow domain.Workflow
	var scheduleJSON []byte

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Type,
		&workflow.Status,
		&scheduleJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &workflow.Schedule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
		}
	}

	return &workflow, nil
}
