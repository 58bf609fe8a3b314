package domain

import (
	"time"
)

// Role represents the privilege tier of an operator account
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// Resource enumerates everything a permission can be granted on.
// The set is closed: unknown resources cannot be expressed.
type Resource string

const (
	ResourceWorkflows Resource = "workflows"
	ResourceRuns      Resource = "runs"
	ResourceDoctors   Resource = "doctors"
	ResourceAdmins    Resource = "admins"
	ResourceAuditLogs Resource = "audit_logs"
)

// Action enumerates what can be done to a resource
type Action string

const (
	ActionView    Action = "view"
	ActionEdit    Action = "edit"
	ActionTrigger Action = "trigger"
	ActionManage  Action = "manage"
)

// PermissionMatrix maps resource -> action -> granted.
// A missing resource or action key means deny.
type PermissionMatrix map[Resource]map[Action]bool

// Actor represents an authenticated operator invoking privileged operations
type Actor struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Role         Role             `json:"role"`
	Permissions  PermissionMatrix `json:"permissions"`
	Active       bool             `json:"active"`
	PasswordHash string           `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Can reports whether the actor may perform action on resource.
// Super admins pass every check without a matrix entry; everyone else
// needs an explicit true flag, with absence meaning deny.
func (a *Actor) Can(resource Resource, action Action) bool {
	if a == nil || !a.Active {
		return false
	}
	if a.Role == RoleSuperAdmin {
		return true
	}
	actions, ok := a.Permissions[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// Deactivate disables the account. Actors are never deleted.
func (a *Actor) Deactivate() {
	a.Active = false
	a.UpdatedAt = time.Now().UTC()
}

// SetPermissions replaces the permission matrix wholesale
func (a *Actor) SetPermissions(matrix PermissionMatrix) {
	a.Permissions = matrix
	a.UpdatedAt = time.Now().UTC()
}

// ValidResources returns the closed set of permission resources
func ValidResources() []Resource {
	return []Resource{ResourceWorkflows, ResourceRuns, ResourceDoctors, ResourceAdmins, ResourceAuditLogs}
}

// ValidActions returns the closed set of permission actions
func ValidActions() []Action {
	return []Action{ActionView, ActionEdit, ActionTrigger, ActionManage}
}

// ValidateMatrix rejects matrices that reference resources or actions
// outside the closed enums, so ad hoc string keys never reach storage.
func ValidateMatrix(matrix PermissionMatrix) error {
	known := make(map[Resource]bool, len(ValidResources()))
	for _, r := range ValidResources() {
		known[r] = true
	}
	knownActions := make(map[Action]bool, len(ValidActions()))
	for _, a := range ValidActions() {
		knownActions[a] = true
	}
	for resource, actions := range matrix {
		if !known[resource] {
			return ErrUnknownResource
		}
		for action := range actions {
			if !knownActions[action] {
				return ErrUnknownAction
			}
		}
	}
	return nil
}

var (
	ErrActorNotFound   = NewDomainError("actor not found")
	ErrActorInactive   = NewDomainError("actor is deactivated")
	ErrUnknownResource = NewDomainError("unknown permission resource")
	ErrUnknownAction   = NewDomainError("unknown permission action")
)
