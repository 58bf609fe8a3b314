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

// PasswordService verifies operator credentials
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) error
}

// TokenService issues and validates operator session tokens
type TokenService interface {
	GenerateAccessToken(actorID string) (string, error)
	ValidateAccessToken(token string) (string, error)
}

// LoginResult carries a fresh session token
type LoginResult struct {
	Token string        `json:"token"`
	Actor *domain.Actor `json:"actor"`
}

// AuthUseCase authenticates operators against the actor store
type AuthUseCase struct {
	actorRepo       ports.ActorRepository
	passwordService PasswordService
	tokenService    TokenService
	log             *logrus.Logger
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(actorRepo ports.ActorRepository, passwordService PasswordService, tokenService TokenService, log *logrus.Logger) *AuthUseCase {
	return &AuthUseCase{
		actorRepo:       actorRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
		log:             log,
	}
}

// Login exchanges email and password for a session token. Invalid
// credentials and unknown emails produce the same error so the endpoint
// does not leak which accounts exist.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.NewInvalidArgument("email and password are required")
	}

	actor, err := uc.actorRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrActorNotFound) {
			uc.log.WithField("email", email).Warn("login attempt for unknown email")
			return nil, apperror.NewUnauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up actor: %w", err)
	}

	if !actor.Active {
		uc.log.WithField("actor_id", actor.ID).Warn("login attempt for deactivated account")
		return nil, apperror.NewUnauthenticated("invalid email or password")
	}

	if err := uc.passwordService.VerifyPassword(actor.PasswordHash, password); err != nil {
		uc.log.WithField("actor_id", actor.ID).Warn("login attempt with wrong password")
		return nil, apperror.NewUnauthenticated("invalid email or password")
	}

	token, err := uc.tokenService.GenerateAccessToken(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	uc.log.WithFields(logrus.Fields{"actor_id": actor.ID, "role": actor.Role}).Info("operator logged in")
	return &LoginResult{Token: token, Actor: actor}, nil
}
