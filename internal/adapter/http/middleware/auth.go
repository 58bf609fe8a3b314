package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/practika/practika/internal/adapter/http/response"
	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

type contextKey string

const actorContextKey contextKey = "auth_actor"

// TokenValidator verifies a session token and returns the actor id it
// was issued for
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

// AuthMiddleware resolves the acting operator from the request. The
// actor row is loaded from the store on every request, never cached, so
// a permission change applies to the actor's very next call.
type AuthMiddleware struct {
	tokenService TokenValidator
	actorRepo    ports.ActorRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokenService TokenValidator, actorRepo ports.ActorRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService, actorRepo: actorRepo}
}

// RequireActor rejects requests without a valid operator session and
// puts the freshly loaded actor on the request context
func (m *AuthMiddleware) RequireActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		actorID, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		actor, err := m.actorRepo.FindByID(r.Context(), actorID)
		if err != nil {
			response.Unauthorized(w, "Unknown actor")
			return
		}
		if !actor.Active {
			response.Unauthorized(w, "Account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ActorFromContext retrieves the resolved actor, or nil when the request
// carried no valid session
func ActorFromContext(ctx context.Context) *domain.Actor {
	if actor, ok := ctx.Value(actorContextKey).(*domain.Actor); ok {
		return actor
	}
	return nil
}

// WorkerAuth guards the worker callback endpoints with a shared bearer
// token. Execution workers are not operators and never pass through the
// permission model.
type WorkerAuth struct {
	token string
}

// NewWorkerAuth creates a new worker auth middleware
func NewWorkerAuth(token string) *WorkerAuth {
	return &WorkerAuth{token: token}
}

// RequireWorker rejects callbacks without the worker token
func (m *WorkerAuth) RequireWorker(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			response.Unauthorized(w, "Worker callbacks are not configured")
			return
		}

		token, ok := bearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			response.Unauthorized(w, "Invalid worker token")
			return
		}

		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
