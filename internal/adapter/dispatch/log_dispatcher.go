package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

// LogDispatcher is the dispatcher used when Kafka is disabled. It logs
// the payload and acknowledges immediately, which keeps local
// development working without a broker.
type LogDispatcher struct {
	routing RoutingTable
	log     *logrus.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(routing RoutingTable, log *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{routing: routing, log: log}
}

// Dispatch logs the payload instead of publishing it
func (d *LogDispatcher) Dispatch(ctx context.Context, workflowType domain.WorkflowType, payload ports.DispatchPayload) (*ports.DispatchAck, error) {
	topic, _ := d.routing.Resolve(workflowType)
	d.log.WithFields(logrus.Fields{
		"workflow_type": workflowType,
		"topic":         topic,
		"run_id":        payload.RunID,
		"workflow_id":   payload.WorkflowID,
		"dry_run":       payload.DryRun,
	}).Info("dispatch (log only)")
	return &ports.DispatchAck{Topic: topic}, nil
}
