package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/practika/practika/internal/adapter/http/middleware"
	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/usecase"
	"github.com/practika/practika/pkg/apperror"
)

// stubTokenValidator maps one token to one actor ID
type stubTokenValidator struct {
	token   string
	actorID string
}

func (s *stubTokenValidator) ValidateAccessToken(token string) (string, error) {
	if token != s.token {
		return "", errors.New("invalid token")
	}
	return s.actorID, nil
}

// stubActorStore serves a single actor for the auth middleware
type stubActorStore struct {
	actor *domain.Actor
}

func (s *stubActorStore) Create(ctx context.Context, actor *domain.Actor) error { return nil }
func (s *stubActorStore) FindByID(ctx context.Context, id string) (*domain.Actor, error) {
	if s.actor == nil || s.actor.ID != id {
		return nil, domain.ErrActorNotFound
	}
	return s.actor, nil
}
func (s *stubActorStore) FindByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	return nil, domain.ErrActorNotFound
}
func (s *stubActorStore) List(ctx context.Context) ([]*domain.Actor, error) { return nil, nil }
func (s *stubActorStore) Update(ctx context.Context, actor *domain.Actor) error {
	return nil
}

func testAuthMiddleware(actor *domain.Actor) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(
		&stubTokenValidator{token: "valid-token", actorID: actor.ID},
		&stubActorStore{actor: actor},
	)
}

func testActor() *domain.Actor {
	return &domain.Actor{ID: "root-1", Email: "root@practika.io", Role: domain.RoleSuperAdmin, Active: true}
}

// MockWorkflowUseCase is a mock implementation of WorkflowUseCase
type MockWorkflowUseCase struct {
	mock.Mock
}

func (m *MockWorkflowUseCase) ListWorkflows(ctx context.Context, actor *domain.Actor) ([]*domain.Workflow, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowUseCase) GetWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) (*domain.Workflow, error) {
	args := m.Called(ctx, actor, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowUseCase) UpdateWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, update domain.WorkflowUpdate) error {
	args := m.Called(ctx, actor, workflowID, update)
	return args.Error(0)
}

func (m *MockWorkflowUseCase) TriggerWorkflow(ctx context.Context, actor *domain.Actor, workflowID string, options domain.TriggerOptions) (*usecase.TriggerResult, error) {
	args := m.Called(ctx, actor, workflowID, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.TriggerResult), args.Error(1)
}

func (m *MockWorkflowUseCase) PauseWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error {
	args := m.Called(ctx, actor, workflowID)
	return args.Error(0)
}

func (m *MockWorkflowUseCase) ResumeWorkflow(ctx context.Context, actor *domain.Actor, workflowID string) error {
	args := m.Called(ctx, actor, workflowID)
	return args.Error(0)
}

func (m *MockWorkflowUseCase) ListWorkflowRuns(ctx context.Context, actor *domain.Actor, workflowID string, limit int) ([]*domain.Run, error) {
	args := m.Called(ctx, actor, workflowID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Run), args.Error(1)
}

func (m *MockWorkflowUseCase) GetRun(ctx context.Context, actor *domain.Actor, runID string) (*domain.Run, error) {
	args := m.Called(ctx, actor, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func newWorkflowRouter(mockUseCase *MockWorkflowUseCase) *mux.Router {
	handler := NewWorkflowHandler(mockUseCase, testAuthMiddleware(testActor()))
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func TestWorkflowHandler_TriggerWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		workflowID     string
		requestBody    string
		authHeader     string
		mockResult     *usecase.TriggerResult
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful trigger",
			workflowID:     "wf-1",
			requestBody:    `{"doctor_ids": ["doc-1"], "dry_run": true}`,
			authHeader:     "Bearer valid-token",
			mockResult:     &usecase.TriggerResult{RunID: "run-123"},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"status":true,"message":"Workflow triggered successfully","data":{"run_id":"run-123"}}`,
		},
		{
			name:           "trigger without body",
			workflowID:     "wf-1",
			authHeader:     "Bearer valid-token",
			mockResult:     &usecase.TriggerResult{RunID: "run-456"},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"status":true,"message":"Workflow triggered successfully","data":{"run_id":"run-456"}}`,
		},
		{
			name:           "missing session",
			workflowID:     "wf-1",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Authorization header required","data":null,"code":"UNAUTHENTICATED"}`,
		},
		{
			name:           "invalid token",
			workflowID:     "wf-1",
			authHeader:     "Bearer wrong-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Invalid or expired token","data":null,"code":"UNAUTHENTICATED"}`,
		},
		{
			name:           "permission denied",
			workflowID:     "wf-1",
			authHeader:     "Bearer valid-token",
			mockError:      apperror.ErrPermissionDenied,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":false,"message":"Permission denied","data":null,"code":"PERMISSION_DENIED"}`,
		},
		{
			name:           "workflow not found",
			workflowID:     "missing",
			authHeader:     "Bearer valid-token",
			mockError:      apperror.NewNotFound("workflow not found"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":false,"message":"workflow not found","data":null,"code":"NOT_FOUND"}`,
		},
		{
			name:           "rate limited",
			workflowID:     "wf-1",
			authHeader:     "Bearer valid-token",
			mockError:      apperror.ErrRateLimited,
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"status":false,"message":"Too many requests","data":null,"code":"RATE_LIMITED"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &MockWorkflowUseCase{}
			router := newWorkflowRouter(mockUseCase)

			if tt.mockResult != nil || tt.mockError != nil {
				mockUseCase.On("TriggerWorkflow", mock.Anything, mock.AnythingOfType("*domain.Actor"), tt.workflowID, mock.AnythingOfType("domain.TriggerOptions")).
					Return(tt.mockResult, tt.mockError)
			}

			req := httptest.NewRequest("POST", "/api/v1/workflows/"+tt.workflowID+"/trigger", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestWorkflowHandler_UpdateWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockError      error
		expectCall     bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful update",
			requestBody:    `{"name": "Reminders v2"}`,
			expectCall:     true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":true,"message":"Workflow updated successfully","data":{"success":true}}`,
		},
		{
			name:           "invalid request body",
			requestBody:    `{"name": }`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":false,"message":"Invalid request body","data":null,"code":"INVALID_ARGUMENT"}`,
		},
		{
			name:           "empty update rejected",
			requestBody:    `{}`,
			expectCall:     true,
			mockError:      apperror.NewInvalidArgument("updates payload is required"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":false,"message":"updates payload is required","data":null,"code":"INVALID_ARGUMENT"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &MockWorkflowUseCase{}
			router := newWorkflowRouter(mockUseCase)

			if tt.expectCall {
				mockUseCase.On("UpdateWorkflow", mock.Anything, mock.AnythingOfType("*domain.Actor"), "wf-1", mock.AnythingOfType("domain.WorkflowUpdate")).
					Return(tt.mockError)
			}

			req := httptest.NewRequest("PATCH", "/api/v1/workflows/wf-1", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer valid-token")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestWorkflowHandler_ListWorkflowRuns(t *testing.T) {
	mockUseCase := &MockWorkflowUseCase{}
	router := newWorkflowRouter(mockUseCase)

	mockUseCase.On("ListWorkflowRuns", mock.Anything, mock.AnythingOfType("*domain.Actor"), "wf-1", 10).
		Return([]*domain.Run{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/workflows/wf-1/runs?limit=10", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestWorkflowHandler_ListWorkflowRunsIgnoresBadLimit(t *testing.T) {
	mockUseCase := &MockWorkflowUseCase{}
	router := newWorkflowRouter(mockUseCase)

	// unparseable limit falls through to the use case default
	mockUseCase.On("ListWorkflowRuns", mock.Anything, mock.AnythingOfType("*domain.Actor"), "wf-1", 0).
		Return([]*domain.Run{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/workflows/wf-1/runs?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestWorkflowHandler_GetRun(t *testing.T) {
	mockUseCase := &MockWorkflowUseCase{}
	router := newWorkflowRouter(mockUseCase)

	mockUseCase.On("GetRun", mock.Anything, mock.AnythingOfType("*domain.Actor"), "run-1").
		Return(&domain.Run{ID: "run-1", Status: domain.RunStatusRunning}, nil)

	req := httptest.NewRequest("GET", "/api/v1/runs/run-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"run-1"`)
	mockUseCase.AssertExpectations(t)
}

func TestWorkflowHandler_DeactivatedActorRejected(t *testing.T) {
	inactive := testActor()
	inactive.Active = false

	handler := NewWorkflowHandler(&MockWorkflowUseCase{}, testAuthMiddleware(inactive))
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest("GET", "/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"Account is deactivated","data":null,"code":"UNAUTHENTICATED"}`, w.Body.String())
}
