package ports

import (
	"context"

	"github.com/practika/practika/internal/domain"
)

// DispatchPayload is the sole channel between the orchestration core and
// the external execution workers. RunID is the correlation id the worker
// uses for progress and finalize callbacks.
type DispatchPayload struct {
	RunID       string   `json:"runId"`
	WorkflowID  string   `json:"workflowId"`
	Manual      bool     `json:"manual"`
	TriggeredBy string   `json:"triggeredBy"`
	DoctorIDs   []string `json:"doctorIds,omitempty"`
	DryRun      bool     `json:"dryRun,omitempty"`
}

// DispatchAck identifies where a payload was published
type DispatchAck struct {
	Topic string `json:"topic"`
}

// Dispatcher routes a triggered run to the execution channel for its
// workflow type. Implementations must acknowledge only after the channel
// has accepted the payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, workflowType domain.WorkflowType, payload DispatchPayload) (*DispatchAck, error)
}
