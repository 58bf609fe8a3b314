package ports

import (
	"context"

	"github.com/practika/practika/internal/domain"
)

// ActorRepository provides access to operator accounts. Lookups are
// expected to hit the store every time so permission changes take effect
// on the next call, not the next session.
type ActorRepository interface {
	Create(ctx context.Context, actor *domain.Actor) error
	FindByID(ctx context.Context, id string) (*domain.Actor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Actor, error)
	List(ctx context.Context) ([]*domain.Actor, error)
	Update(ctx context.Context, actor *domain.Actor) error
}

// WorkflowRepository provides access to workflow definitions
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *domain.Workflow) error
	FindByID(ctx context.Context, id string) (*domain.Workflow, error)
	List(ctx context.Context) ([]*domain.Workflow, error)
	Update(ctx context.Context, workflow *domain.Workflow) error
}

// RunRepository provides access to run records. AppendProgress must be an
// atomic increment at the store, never a read-modify-write of absolute
// values, so concurrent workers cannot lose updates. Finalize must only
// take effect while the run is still running.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	FindByID(ctx context.Context, id string) (*domain.Run, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*domain.Run, error)
	AppendProgress(ctx context.Context, runID string, delta domain.ProgressDelta) (*domain.Run, error)
	Finalize(ctx context.Context, runID string, status domain.RunStatus) (*domain.Run, bool, error)
}

// AuditRepository is append-only storage for audit entries
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// DoctorRepository provides access to doctor tenants
type DoctorRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Doctor, error)
	Update(ctx context.Context, doctor *domain.Doctor) error
}
