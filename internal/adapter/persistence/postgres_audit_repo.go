package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// PostgresAuditRepository implements AuditRepository using PostgreSQL.
// The table is insert-only; nothing here updates or deletes rows.
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository creates a new PostgreSQL audit repository
func NewPostgresAuditRepository(db *sql.DB) ports.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Create appends one audit entry
func (r *PostgresAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, actor_id, actor_email, action, resource_type, resource_id, changes, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorEmail,
		string(entry.Action),
		string(entry.ResourceType),
		entry.ResourceID,
		changesJSON,
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

// List retrieves audit entries filtered by resource or actor, newest
// first. Timestamp ties fall back to insertion order via the sequence
// column.
func (r *PostgresAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, actor_id, actor_email, action, resource_type, resource_id, changes, metadata, created_at
		FROM audit_entries
		WHERE ($1 = '' OR resource_id = $1)
		  AND ($2 = '' OR actor_id = $2)
		ORDER BY created_at DESC, seq DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, filter.ResourceID, filter.ActorID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var changesJSON, metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorEmail,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&changesJSON,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
			}
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
