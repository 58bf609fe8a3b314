package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/practika/practika/internal/adapter/http/middleware"
	"github.com/practika/practika/internal/adapter/http/response"
	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/usecase"
)

// WorkflowUseCase defines the behavior the handler depends on.
// Using an interface here makes the handler easily testable with mocks.
type WorkflowUseCase interface {
	ListWorkflows(ctx context.Context, actor *domain.Actor) ([]*domain.Workflow, error)
	GetWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) (*domain.Workflow, error)
	UpdateWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, update domain.WorkflowUpdate) error
	TriggerWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, options domain.TriggerOptions) (*usecase.TriggerResult, error)
	PauseWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error
	ResumeWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error
	ListWorkflowRuns(ctx context.Context, actor *domain.Actor, workflowID string, limit int) ([]*domain.Run, error)
	GetRun(ctx context.Context, actor *domain.Actor, runID string) (*domain.Run, error)
}

// WorkflowHandler handles HTTP requests for the orchestration surface
type WorkflowHandler struct {
	workflowUseCase WorkflowUseCase
	authMiddleware  *middleware.AuthMiddleware
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(workflowUseCase WorkflowUseCase, authMiddleware *middleware.AuthMiddleware) *WorkflowHandler {
	return &WorkflowHandler{
		workflowUseCase: workflowUseCase,
		authMiddleware:  authMiddleware,
	}
}

// RegisterRoutes registers workflow routes
func (h *WorkflowHandler) RegisterRoutes(router *mux.Router) {
	auth := h.authMiddleware.RequireActor
	router.HandleFunc("/api/v1/workflows", auth(h.ListWorkflows)).Methods("GET")
	router.HandleFunc("/api/v1/workflows/{id}", auth(h.GetWorkflow)).Methods("GET")
	router.HandleFunc("/api/v1/workflows/{id}", auth(h.UpdateWorkflow)).Methods("PATCH")
	router.HandleFunc("/api/v1/workflows/{id}/trigger", auth(h.TriggerWorkflow)).Methods("POST")
	router.HandleFunc("/api/v1/workflows/{id}/pause", auth(h.PauseWorkflow)).Methods("POST")
	router.HandleFunc("/api/v1/workflows/{id}/resume", auth(h.ResumeWorkflow)).Methods("POST")
	router.HandleFunc("/api/v1/workflows/{id}/runs", auth(h.ListWorkflowRuns)).Methods("GET")
	router.HandleFunc("/api/v1/runs/{id}", auth(h.GetRun)).Methods("GET")
}

// ListWorkflows handles listing all workflow definitions
func (h *WorkflowHandler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	workflows, err := h.workflowUseCase.ListWorkflows(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workflows retrieved successfully", workflows)
}

// GetWorkflow handles retrieving one workflow
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	workflow, err := h.workflowUseCase.GetWorkflow(r.Context(), actor, workflowID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workflow retrieved successfully", workflow)
}

// UpdateWorkflow handles an admin update of the mutable workflow fields
func (h *WorkflowHandler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	var update domain.WorkflowUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.workflowUseCase.UpdateWorkflow(r.Context(), actor, workflowID, update); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workflow updated successfully", map[string]bool{"success": true})
}

// TriggerWorkflow handles a manual trigger. The response carries the run
// ID as soon as the run is durable and the dispatch acknowledged; the
// work itself happens asynchronously.
func (h *WorkflowHandler) TriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	var options domain.TriggerOptions
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&options); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	result, err := h.workflowUseCase.TriggerWorkflow(r.Context(), actor, workflowID, options)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusAccepted, "Workflow triggered successfully", result)
}

// PauseWorkflow handles pausing a workflow
func (h *WorkflowHandler) PauseWorkflow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	if err := h.workflowUseCase.PauseWorkflow(r.Context(), actor, workflowID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workflow paused successfully", map[string]bool{"success": true})
}

// ResumeWorkflow handles resuming a paused workflow
func (h *WorkflowHandler) ResumeWorkflow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	if err := h.workflowUseCase.ResumeWorkflow(r.Context(), actor, workflowID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Workflow resumed successfully", map[string]bool{"success": true})
}

// ListWorkflowRuns handles listing runs for a workflow, newest first
func (h *WorkflowHandler) ListWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	workflowID := mux.Vars(r)["id"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.workflowUseCase.ListWorkflowRuns(r.Context(), actor, workflowID, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Runs retrieved successfully", runs)
}

// GetRun handles retrieving one run with its full log and error lists
func (h *WorkflowHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	runID := mux.Vars(r)["id"]

	run, err := h.workflowUseCase.GetRun(r.Context(), actor, runID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Run retrieved successfully", run)
}
