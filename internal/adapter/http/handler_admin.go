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

// AdminUseCase defines the operator-account behavior the handler depends on
type AdminUseCase interface {
	ListAdmins(ctx context.Context, actor *domain.Actor) ([]*domain.Actor, error)
	UpdatePermissions(ctx context.Context, actor *domain.Actor, adminID string, matrix domain.PermissionMatrix) error
	DeactivateAdmin(ctx context.Context, actor *domain.Actor, adminID string) error
}

// DoctorUseCase defines the doctor-tenant behavior the handler depends on
type DoctorUseCase interface {
	SuspendDoctor(ctx context.Context, actor *domain.Actor, doctorID, reason string) error
	ReactivateDoctor(ctx context.Context, actor *domain.Actor, doctorID string) error
}

// AdminHandler handles operator-account and doctor-tenant administration
type AdminHandler struct {
	adminUseCase   AdminUseCase
	doctorUseCase  DoctorUseCase
	authMiddleware *middleware.AuthMiddleware
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUseCase AdminUseCase, doctorUseCase DoctorUseCase, authMiddleware *middleware.AuthMiddleware) *AdminHandler {
	return &AdminHandler{
		adminUseCase:   adminUseCase,
		doctorUseCase:  doctorUseCase,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers admin routes
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	auth := h.authMiddleware.RequireActor
	router.HandleFunc("/api/v1/admins", auth(h.ListAdmins)).Methods("GET")
	router.HandleFunc("/api/v1/admins/{id}/permissions", auth(h.UpdatePermissions)).Methods("PUT")
	router.HandleFunc("/api/v1/admins/{id}/deactivate", auth(h.DeactivateAdmin)).Methods("POST")
	router.HandleFunc("/api/v1/doctors/{id}/suspend", auth(h.SuspendDoctor)).Methods("POST")
	router.HandleFunc("/api/v1/doctors/{id}/reactivate", auth(h.ReactivateDoctor)).Methods("POST")
}

// ListAdmins handles listing operator accounts
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	admins, err := h.adminUseCase.ListAdmins(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Admins retrieved successfully", admins)
}

type updatePermissionsRequest struct {
	Permissions domain.PermissionMatrix `json:"permissions"`
}

// UpdatePermissions handles replacing an admin's permission matrix
func (h *AdminHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	adminID := mux.Vars(r)["id"]

	var req updatePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.adminUseCase.UpdatePermissions(r.Context(), actor, adminID, req.Permissions); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Permissions updated successfully", map[string]bool{"success": true})
}

// DeactivateAdmin handles disabling an operator account
func (h *AdminHandler) DeactivateAdmin(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	adminID := mux.Vars(r)["id"]

	if err := h.adminUseCase.DeactivateAdmin(r.Context(), actor, adminID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Admin deactivated successfully", map[string]bool{"success": true})
}

type suspendDoctorRequest struct {
	Reason string `json:"reason"`
}

// SuspendDoctor handles suspending a doctor tenant
func (h *AdminHandler) SuspendDoctor(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	doctorID := mux.Vars(r)["id"]

	var req suspendDoctorRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	if err := h.doctorUseCase.SuspendDoctor(r.Context(), actor, doctorID, req.Reason); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor suspended successfully", map[string]bool{"success": true})
}

// ReactivateDoctor handles restoring a suspended doctor tenant
func (h *AdminHandler) ReactivateDoctor(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	doctorID := mux.Vars(r)["id"]

	if err := h.doctorUseCase.ReactivateDoctor(r.Context(), actor, doctorID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor reactivated successfully", map[string]bool{"success": true})
}
