package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// PostgresActorRepository implements ActorRepository using PostgreSQL
type PostgresActorRepository struct {
	db *sql.DB
}

// NewPostgresActorRepository creates a new PostgreSQL actor repository
func NewPostgresActorRepository(db *sql.DB) ports.ActorRepository {
	return &PostgresActorRepository{db: db}
}

const actorColumns = `id, email, name, password_hash, role, permissions, active, created_at, updated_at`

// Create saves a new operator account
func (r *PostgresActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	query := `
		INSERT INTO admins (` + actorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	permissionsJSON, err := json.Marshal(actor.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		actor.ID,
		actor.Email,
		actor.Name,
		actor.PasswordHash,
		string(actor.Role),
		permissionsJSON,
		actor.Active,
		actor.CreatedAt,
		actor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}

	return nil
}

// FindByID retrieves an operator account by ID
func (r *PostgresActorRepository) FindByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM admins WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByEmail retrieves an operator account by email
func (r *PostgresActorRepository) FindByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM admins WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// List retrieves all operator accounts ordered by email
func (r *PostgresActorRepository) List(ctx context.Context) ([]*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM admins ORDER BY email ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer rows.Close()

	var actors []*domain.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actors: %w", err)
	}

	return actors, nil
}

// Update writes the mutable fields of an operator account
func (r *PostgresActorRepository) Update(ctx context.Context, actor *domain.Actor) error {
	query := `
		UPDATE admins
		SET email = $2, name = $3, password_hash = $4, role = $5, permissions = $6, active = $7, updated_at = $8
		WHERE id = $1
	`

	permissionsJSON, err := json.Marshal(actor.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		actor.ID,
		actor.Email,
		actor.Name,
		actor.PasswordHash,
		string(actor.Role),
		permissionsJSON,
		actor.Active,
		actor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrActorNotFound
	}

	return nil
}

func (r *PostgresActorRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Actor, error) {
	actor, err := scanActor(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to find actor: %w", err)
	}
	return actor, nil
}

func scanActor(row rowScanner) (*domain.Actor, error) {
	var actor domain.Actor
	var permissionsJSON []byte

	err := row.Scan(
		&actor.ID,
		&actor.Email,
		&actor.Name,
		&actor.PasswordHash,
		&actor.Role,
		&permissionsJSON,
		&actor.Active,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(permissionsJSON) > 0 {
		if err := json.Unmarshal(permissionsJSON, &actor.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	return &actor, nil
}
