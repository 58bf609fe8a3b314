package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
	"github.com/practika/practika/pkg/apperror"
)

const defaultRunLimit = 50

// TriggerLimiter caps how often an actor may trigger workflows. The
// redis-backed implementation lives in internal/service/ratelimit; tests
// and disabled deployments use a noop.
type TriggerLimiter interface {
	Allow(ctx context.Context, actorID string) (bool, error)
}

// TriggerResult is the response of a trigger call. The run may already be
// terminal-failed when dispatch could not reach the execution channel;
// the run record, not the trigger response, is the source of truth.
type TriggerResult struct {
	RunID string `json:"run_id"`
}

// WorkflowUseCase is the externally callable orchestration surface. Every
// operation authorizes the acting operator first, then validates, then
// operates, and mutations emit exactly one audit entry.
type WorkflowUseCase struct {
	workflowRepo ports.WorkflowRepository
	runRepo      ports.RunRepository
	dispatcher   ports.Dispatcher
	recorder     *AuditRecorder
	limiter      TriggerLimiter
	log          *logrus.Logger
}

// NewWorkflowUseCase creates a new workflow use case
func NewWorkflowUseCase(
	workflowRepo ports.WorkflowRepository,
	runRepo ports.RunRepository,
	dispatcher ports.Dispatcher,
	recorder *AuditRecorder,
	limiter TriggerLimiter,
	log *logrus.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		workflowRepo: workflowRepo,
		runRepo:      runRepo,
		dispatcher:   dispatcher,
		recorder:     recorder,
		limiter:      limiter,
		log:          log,
	}
}

// ListWorkflows returns all workflow definitions ordered by name
func (uc *WorkflowUseCase) ListWorkflows(ctx context.Context, actor *domain.Actor) ([]*domain.Workflow, error) {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionView); err != nil {
		return nil, err
	}

	workflows, err := uc.workflowRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return workflows, nil
}

// GetWorkflow returns one workflow definition
func (uc *WorkflowUseCase) GetWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) (*domain.Workflow, error) {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionView); err != nil {
		return nil, err
	}
	if workflowID == "" {
		return nil, apperror.NewInvalidArgument("workflow ID is required")
	}

	return uc.findWorkflow(ctx, workflowID)
}

// UpdateWorkflow writes the mutable fields of a workflow and emits one
// audit entry enumerating each changed field with old and new values
func (uc *WorkflowUseCase) UpdateWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, update domain.WorkflowUpdate) error {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionEdit); err != nil {
		return err
	}
	if workflowID == "" {
		return apperror.NewInvalidArgument("workflow ID is required")
	}
	if update.Empty() {
		return apperror.NewInvalidArgument("updates payload is required")
	}

	workflow, err := uc.findWorkflow(ctx, workflowID)
	if err != nil {
		return err
	}

	changes, err := workflow.Apply(update)
	if err != nil {
		return apperror.NewInvalidArgument(err.Error())
	}
	if len(changes) == 0 {
		return nil
	}

	if err := uc.workflowRepo.Update(ctx, workflow); err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, domain.AuditActionUpdateWorkflow, domain.ResourceWorkflows, workflowID).
		WithChanges(changes))
	return nil
}

// PauseWorkflow stops a workflow from being scheduled. Historical and
// in-flight runs are untouched.
func (uc *WorkflowUseCase) PauseWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error {
	return uc.setStatus(ctx, actor, workflowID, domain.WorkflowStatusPaused)
}

// ResumeWorkflow puts a paused workflow back in rotation
func (uc *WorkflowUseCase) ResumeWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error {
	return uc.setStatus(ctx, actor, workflowID, domain.WorkflowStatusActive)
}

func (uc *WorkflowUseCase) setStatus(ctx context.Context, actor *domain.Actor, workflowID string, status domain.WorkflowStatus) error {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionEdit); err != nil {
		return err
	}
	if workflowID == "" {
		return apperror.NewInvalidArgument("workflow ID is required")
	}

	workflow, err := uc.findWorkflow(ctx, workflowID)
	if err != nil {
		return err
	}

	action := domain.AuditActionPauseWorkflow
	if status == domain.WorkflowStatusPaused {
		err = workflow.Pause()
	} else {
		action = domain.AuditActionResumeWorkflow
		err = workflow.Resume()
	}
	if err != nil {
		return apperror.NewInvalidArgument(err.Error())
	}

	if err := uc.workflowRepo.Update(ctx, workflow); err != nil {
		return fmt.Errorf("failed to update workflow status: %w", err)
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, action, domain.ResourceWorkflows, workflowID).
		WithMetadata(map[string]string{"status": string(status)}))
	return nil
}

// TriggerWorkflow creates a run, hands it to the dispatch channel, and
// returns as soon as the run is durable and the dispatch acknowledged.
// Callers poll ListWorkflowRuns for completion. If the channel is
// unreachable the run is finalized as failed with one error entry and
// the trigger still succeeds with its run ID: the run record carries
// what happened.
func (uc *WorkflowUseCase) TriggerWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, options domain.TriggerOptions) (*TriggerResult, error) {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionTrigger); err != nil {
		return nil, err
	}
	if workflowID == "" {
		return nil, apperror.NewInvalidArgument("workflow ID is required")
	}

	if uc.limiter != nil {
		allowed, err := uc.limiter.Allow(ctx, actor.ID)
		if err != nil {
			uc.log.WithError(err).Warn("trigger rate limiter unavailable, allowing request")
		} else if !allowed {
			return nil, apperror.ErrRateLimited
		}
	}

	workflow, err := uc.findWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	run := domain.NewRun(workflow.ID, actor.ID, true, options)
	if err := uc.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	payload := ports.DispatchPayload{
		RunID:       run.ID,
		WorkflowID:  workflow.ID,
		Manual:      run.Manual,
		TriggeredBy: actor.ID,
		DoctorIDs:   options.DoctorIDs,
		DryRun:      options.DryRun,
	}

	if ack, err := uc.dispatcher.Dispatch(ctx, workflow.Type, payload); err != nil {
		uc.failDispatchedRun(ctx, run.ID, err)
	} else {
		uc.log.WithFields(logrus.Fields{
			"run_id":      run.ID,
			"workflow_id": workflow.ID,
			"topic":       ack.Topic,
		}).Info("run dispatched")
	}

	uc.recorder.Record(ctx, domain.NewAuditEntry(actor, domain.AuditActionTriggerWorkflow, domain.ResourceWorkflows, workflowID).
		WithMetadata(map[string]string{"run_id": run.ID, "dry_run": fmt.Sprintf("%t", options.DryRun)}))

	return &TriggerResult{RunID: run.ID}, nil
}

// failDispatchedRun recovers a dispatch failure locally: the fresh run is
// marked failed with a single error entry instead of staying running
// forever. Errors here are logged, not propagated; the trigger response
// already carries the run ID.
func (uc *WorkflowUseCase) failDispatchedRun(ctx context.Context, runID string, dispatchErr error) {
	cause := fmt.Errorf("%w: %v", apperror.ErrDispatchFailure, dispatchErr)
	uc.log.WithError(cause).WithField("run_id", runID).Error("dispatch failed, marking run failed")

	if _, err := uc.runRepo.AppendProgress(ctx, runID, domain.ProgressDelta{
		Error: fmt.Sprintf("dispatch failed: %v", dispatchErr),
	}); err != nil {
		uc.log.WithError(err).WithField("run_id", runID).Error("failed to record dispatch error on run")
	}
	if _, _, err := uc.runRepo.Finalize(ctx, runID, domain.RunStatusFailed); err != nil {
		uc.log.WithError(err).WithField("run_id", runID).Error("failed to finalize run after dispatch failure")
	}
}

// ListWorkflowRuns returns runs for a workflow, most recently started
// first, capped at limit (default 50)
func (uc *WorkflowUseCase) ListWorkflowRuns(ctx context.Context, actor *domain.Actor, workflowID string, limit int) ([]*domain.Run, error) {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionView); err != nil {
		return nil, err
	}
	if workflowID == "" {
		return nil, apperror.NewInvalidArgument("workflow ID is required")
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := uc.runRepo.ListByWorkflow(ctx, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its full log and error lists
func (uc *WorkflowUseCase) GetRun(ctx context.Context, actor *domain.Actor, runID string) (*domain.Run, error) {
	if err := authorize(actor, domain.ResourceWorkflows, domain.ActionView); err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, apperror.NewInvalidArgument("run ID is required")
	}

	run, err := uc.runRepo.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return nil, apperror.NewNotFound("run not found")
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (uc *WorkflowUseCase) findWorkflow(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	workflow, err := uc.workflowRepo.FindByID(ctx, workflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return nil, apperror.NewNotFound("workflow not found")
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return workflow, nil
}
