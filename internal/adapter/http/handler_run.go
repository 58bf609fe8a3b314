package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/practika/practika/internal/adapter/http/middleware"
	"github.com/practika/practika/internal/adapter/http/response"
	"github.com/practika/practika/internal/domain"
)

// RunUseCase defines the worker callback behavior the handler depends on
type RunUseCase interface {
	AppendProgress(ctx context.Context, runID string, delta domain.ProgressDelta) (*domain.Run, error)
	Finalize(ctx context.Context, runID string, status domain.RunStatus) (*domain.Run, error)
}

// RunHandler handles the callback endpoints execution workers report
// progress through. These sit behind the worker token, not an operator
// session.
type RunHandler struct {
	runUseCase RunUseCase
	workerAuth *middleware.WorkerAuth
}

// NewRunHandler creates a new run handler
func NewRunHandler(runUseCase RunUseCase, workerAuth *middleware.WorkerAuth) *RunHandler {
	return &RunHandler{runUseCase: runUseCase, workerAuth: workerAuth}
}

// RegisterRoutes registers worker callback routes
func (h *RunHandler) RegisterRoutes(router *mux.Router) {
	worker := h.workerAuth.RequireWorker
	router.HandleFunc("/api/v1/runs/{id}/progress", worker(h.AppendProgress)).Methods("POST")
	router.HandleFunc("/api/v1/runs/{id}/finalize", worker(h.Finalize)).Methods("POST")
}

type finalizeRequest struct {
	Status domain.RunStatus `json:"status"`
}

// AppendProgress handles a worker progress report
func (h *RunHandler) AppendProgress(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	var delta domain.ProgressDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	run, err := h.runUseCase.AppendProgress(r.Context(), runID, delta)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Progress recorded", run)
}

// Finalize handles a worker finalize report
func (h *RunHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	run, err := h.runUseCase.Finalize(r.Context(), runID, req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Run finalized", run)
}
