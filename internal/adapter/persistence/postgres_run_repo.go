package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// PostgresRunRepository implements RunRepository using PostgreSQL. The
// row is the concurrency guard: counters are incremented in SQL and log
// lines appended with jsonb concatenation, so concurrent workers
// reporting progress for the same run cannot overwrite each other.
type PostgresRunRepository struct {
	db *sql.DB
}

// NewPostgresRunRepository creates a new PostgreSQL run repository
func NewPostgresRunRepository(db *sql.DB) ports.RunRepository {
	return &PostgresRunRepository{db: db}
}

const runColumns = `id, workflow_id, status, manual, triggered_by, doctor_ids, dry_run,
	doctors_processed, success_count, failure_count, logs, errors, started_at, ended_at`

// Create saves a new run
func (r *PostgresRunRepository) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	doctorIDsJSON, err := json.Marshal(run.Options.DoctorIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal doctor ids: %w", err)
	}
	logsJSON, err := json.Marshal(run.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}
	if run.Errors == nil {
		errorsJSON = []byte("[]")
	}

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.WorkflowID,
		string(run.Status),
		run.Manual,
		run.TriggeredBy,
		doctorIDsJSON,
		run.Options.DryRun,
		run.DoctorsProcessed,
		run.SuccessCount,
		run.FailureCount,
		logsJSON,
		errorsJSON,
		run.StartedAt,
		run.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// FindByID retrieves a run by its ID
func (r *PostgresRunRepository) FindByID(ctx context.Context, id string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return run, nil
}

// ListByWorkflow retrieves runs for a workflow ordered by start time
// descending, capped at limit
func (r *PostgresRunRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*domain.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// AppendProgress folds a delta into a running run in a single statement.
// Counters are incremented, never set, and the log and error lists grow
// by jsonb concatenation, so no concurrent reporter can lose an update.
// A terminal run rejects the delta.
func (r *PostgresRunRepository) AppendProgress(ctx context.Context, runID string, delta domain.ProgressDelta) (*domain.Run, error) {
	now := time.Now().UTC()

	logAppend := []byte("[]")
	if delta.LogMessage != "" {
		b, err := json.Marshal([]domain.LogLine{{Level: delta.LogLevel, Message: delta.LogMessage, Timestamp: now}})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal log line: %w", err)
		}
		logAppend = b
	}

	errorAppend := []byte("[]")
	if delta.Error != "" {
		b, err := json.Marshal([]domain.RunError{{Message: delta.Error, Timestamp: now}})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal error entry: %w", err)
		}
		errorAppend = b
	}

	query := `
		UPDATE runs
		SET doctors_processed = doctors_processed + $2,
			success_count = success_count + $3,
			failure_count = failure_count + $4,
			logs = logs || $5::jsonb,
			errors = errors || $6::jsonb
		WHERE id = $1 AND status = 'running'
		RETURNING ` + runColumns + `
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query,
		runID,
		delta.DoctorsProcessed,
		delta.SuccessCount,
		delta.FailureCount,
		logAppend,
		errorAppend,
	))
	if err == nil {
		return run, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to append progress: %w", err)
	}

	// Zero rows: either the run does not exist or it is already terminal.
	if _, findErr := r.FindByID(ctx, runID); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrRunTerminal
}

// Finalize sets the terminal status and end timestamp exactly once. The
// status guard makes a second finalize affect zero rows, so racing
// workers leave the first terminal status in place.
func (r *PostgresRunRepository) Finalize(ctx context.Context, runID string, status domain.RunStatus) (*domain.Run, bool, error) {
	query := `
		UPDATE runs
		SET status = $2, ended_at = $3
		WHERE id = $1 AND status = 'running'
		RETURNING ` + runColumns + `
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, runID, string(status), time.Now().UTC()))
	if err == nil {
		return run, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to finalize run: %w", err)
	}

	run, err = r.FindByID(ctx, runID)
	if err != nil {
		return nil, false, err
	}
	return run, false, nil
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var doctorIDsJSON, logsJSON, errorsJSON []byte
	var endedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.WorkflowID,
		&run.Status,
		&run.Manual,
		&run.TriggeredBy,
		&doctorIDsJSON,
		&run.Options.DryRun,
		&run.DoctorsProcessed,
		&run.SuccessCount,
		&run.FailureCount,
		&logsJSON,
		&errorsJSON,
		&run.StartedAt,
		&endedAt,
	)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	if len(doctorIDsJSON) > 0 {
		if err := json.Unmarshal(doctorIDsJSON, &run.Options.DoctorIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal doctor ids: %w", err)
		}
	}
	if len(logsJSON) > 0 {
		if err := json.Unmarshal(logsJSON, &run.Logs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal logs: %w", err)
		}
	}
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
		}
	}

	return &run, nil
}
