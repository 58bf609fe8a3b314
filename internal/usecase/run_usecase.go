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

// RunUseCase is the callback contract for external execution workers.
// Workers authenticate with the worker token, not an operator session,
// so there is no actor authorization here.
type RunUseCase struct {
	runRepo ports.RunRepository
	log     *logrus.Logger
}

// NewRunUseCase creates a new run use case
func NewRunUseCase(runRepo ports.RunRepository, log *logrus.Logger) *RunUseCase {
	return &RunUseCase{runRepo: runRepo, log: log}
}

// AppendProgress folds a worker's delta into the run. Counters are
// incremented atomically at the store, so workers processing disjoint
// doctor subsets of the same run never lose each other's updates.
func (uc *RunUseCase) AppendProgress(ctx context.Context, runID string, delta domain.ProgressDelta) (*domain.Run, error) {
	if runID == "" {
		return nil, apperror.NewInvalidArgument("run ID is required")
	}
	if err := delta.Validate(); err != nil {
		return nil, apperror.NewInvalidArgument(err.Error())
	}

	run, err := uc.runRepo.AppendProgress(ctx, runID, delta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunNotFound):
			return nil, apperror.NewNotFound("run not found")
		case errors.Is(err, domain.ErrRunTerminal):
			return nil, apperror.NewInvalidArgument("run is already terminal")
		}
		return nil, fmt.Errorf("failed to append progress: %w", err)
	}
	return run, nil
}

// Finalize moves a run to its terminal status. A second finalize on an
// already-terminal run is a no-op success, so two workers racing to
// finalize the same run stay harmless and the first status wins.
func (uc *RunUseCase) Finalize(ctx context.Context, runID string, status domain.RunStatus) (*domain.Run, error) {
	if runID == "" {
		return nil, apperror.NewInvalidArgument("run ID is required")
	}
	if !status.Terminal() {
		return nil, apperror.NewInvalidArgument("status must be completed or failed")
	}

	run, changed, err := uc.runRepo.Finalize(ctx, runID, status)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return nil, apperror.NewNotFound("run not found")
		}
		return nil, fmt.Errorf("failed to finalize run: %w", err)
	}

	if changed {
		uc.log.WithFields(logrus.Fields{
			"run_id": runID,
			"status": status,
		}).Info("run finalized")
	} else {
		uc.log.WithFields(logrus.Fields{
			"run_id":  runID,
			"status":  run.Status,
			"attempt": status,
		}).Debug("finalize ignored, run already terminal")
	}
	return run, nil
}
