package policies

import (
	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
)

var errNotPermitted = domain.Forbidden("User is Forbidden from performing this action")

// RequirePermission fails with ErrForbidden unless the actor holds perm.
func RequirePermission(actor domain.Actor, perm string) error {
	if actor.Has(perm) {
		return nil
	}
	return errNotPermitted
}

// RequireAnyPermission fails unless the actor holds at least one of perms.
func RequireAnyPermission(actor domain.Actor, perms ...string) error {
	for _, p := range perms {
		if actor.Has(p) {
			return nil
		}
	}
	return errNotPermitted
}

// SelfOrPermission allows the owner of a record, or anyone holding perm.
// The owner check runs first.
func SelfOrPermission(actor domain.Actor, ownerID uuid.UUID, perm string) error {
	if actor.IsSelf(ownerID) {
		return nil
	}
	return RequirePermission(actor, perm)
}
