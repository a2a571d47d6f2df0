package domain

import (
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation. Middleware
// resolves it from the session or a bearer token; services never read
// ambient request state.
type Actor struct {
	UserID      uuid.UUID
	TenantID    *uuid.UUID
	Name        string
	Email       string
	Role        string
	Permissions map[string]bool
}

// Has reports whether the actor was granted perm.
func (a Actor) Has(perm string) bool {
	return a.Permissions[perm]
}

// IsSelf reports whether id is the actor's own user id.
func (a Actor) IsSelf(id uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == id
}
