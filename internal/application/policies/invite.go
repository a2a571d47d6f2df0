package policies

import (
	"context"
	"time"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"
	"easyshifthq-backend/internal/pkg/validation"
)

// ValidateInviteRole checks the invited role exists and that only admins hand out admin.
func ValidateInviteRole(actor domain.Actor, role string) error {
	if !constants.IsValidRole(role) {
		return domain.Validation("role", "Invalid role")
	}
	if role == constants.Admin && actor.Role != constants.Admin {
		return domain.Forbidden("Only admins can invite admins")
	}
	return nil
}

// ValidateInviteCreation rejects self-invites, addresses that already have an
// account in the tenant, and addresses with an open invitation.
func ValidateInviteCreation(ctx context.Context, repos domain.Repositories, actor domain.Actor, email string, now time.Time) error {
	normalized := validation.NormalizeEmail(email)
	if actor.Email != "" && normalized == validation.NormalizeEmail(actor.Email) {
		return domain.Validation("email", "You cannot invite yourself")
	}

	exists, err := repos.Users().EmailExists(ctx, actor.TenantID, normalized)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrUserAlreadyExists
	}

	pending, err := repos.Invitations().HasPendingForEmail(ctx, actor.TenantID, normalized, now)
	if err != nil {
		return err
	}
	if pending {
		return domain.ErrDuplicateInvitation
	}
	return nil
}
