package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/practika/practika/internal/adapter/http/middleware"
	"github.com/practika/practika/internal/adapter/http/response"
	"github.com/practika/practika/internal/domain"
)

// AuditUseCase defines the audit read behavior the handler depends on
type AuditUseCase interface {
	ListEntries(ctx context.Context, actor *domain.Actor, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// AuditHandler serves the read side of the audit log
type AuditHandler struct {
	auditUseCase   AuditUseCase
	authMiddleware *middleware.AuthMiddleware
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditUseCase AuditUseCase, authMiddleware *middleware.AuthMiddleware) *AuditHandler {
	return &AuditHandler{auditUseCase: auditUseCase, authMiddleware: authMiddleware}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/audit", h.authMiddleware.RequireActor(h.ListEntries)).Methods("GET")
}

// ListEntries handles querying audit entries by resource or actor
func (h *AuditHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	filter := domain.AuditFilter{
		ResourceID: r.URL.Query().Get("resource_id"),
		ActorID:    r.URL.Query().Get("actor_id"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	entries, err := h.auditUseCase.ListEntries(r.Context(), actor, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit entries retrieved successfully", entries)
}
