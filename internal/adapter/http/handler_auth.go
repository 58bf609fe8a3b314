package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/practika/practika/internal/adapter/http/response"
	"github.com/practika/practika/internal/usecase"
)

// AuthUseCase defines the login behavior the handler depends on
type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
}

// AuthHandler handles operator authentication
type AuthHandler struct {
	authUseCase AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUseCase AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/login", h.Login).Methods("POST")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges operator credentials for a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.authUseCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", result)
}
