package usecase

import (
	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/pkg/apperror"
)

// authorize distinguishes a missing or deactivated actor session (401)
// from a valid actor lacking the permission (403). The actor is loaded
// fresh from the store by the auth middleware on every request, so role
// changes take effect on the next call.
func authorize(actor *domain.Actor, resource domain.Resource, action domain.Action) error {
	if actor == nil || !actor.Active {
		return apperror.ErrUnauthenticated
	}
	if !actor.Can(resource, action) {
		return apperror.ErrPermissionDenied
	}
	return nil
}
