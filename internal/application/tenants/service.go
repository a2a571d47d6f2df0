package tenants

import (
	"context"
	"regexp"
	"strings"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"
	"easyshifthq-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const MaxTenantNameLength = 128

var nonLetters = regexp.MustCompile(`[^A-Za-z]`)

// Service creates tenants and reads the caller's tenant.
type Service struct {
	Store domain.UnitOfWork
}

type CreateInput struct {
	Name string `json:"name"`
}

// View is a tenant with its members.
type View struct {
	domain.Tenant
	Members []Member `json:"members"`
}

type Member struct {
	ID       uuid.UUID `json:"id"`
	Fullname string    `json:"fullname"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

// generateTenantCode takes two letters of the name and six hex digits of the
// id, e.g. "AC-1F0C9B".
func generateTenantCode(name string, id uuid.UUID) string {
	prefix := strings.ToUpper(nonLetters.ReplaceAllString(name, ""))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for len(prefix) < 2 {
		prefix += "X"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return prefix + "-" + suffix
}

// Create makes a tenant and moves the calling host user into it as admin.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Tenant, *domain.User, error) {
	if actor.UserID == uuid.Nil {
		return nil, nil, domain.ErrNotAuthenticated
	}
	if actor.TenantID != nil {
		return nil, nil, domain.Conflict("User already belongs to a tenant")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, domain.Validation("name", "Name is required")
	}
	if !validation.MaxLen(name, MaxTenantNameLength) {
		return nil, nil, domain.Validation("name", "Name must be at most 128 characters")
	}

	id := uuid.New()
	t := &domain.Tenant{ID: id, Name: name, Code: generateTenantCode(name, id)}
	var u *domain.User
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		exists, err := tx.Tenants().NameExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return domain.Conflict("A tenant with this name already exists")
		}
		if exists, err = tx.Tenants().CodeExists(ctx, t.Code); err != nil {
			return err
		} else if exists {
			return domain.Conflict("Tenant code collision, please retry")
		}
		if err := tx.Tenants().Insert(ctx, t); err != nil {
			return err
		}
		u, err = tx.Users().GetAnyTenant(ctx, actor.UserID)
		if err != nil {
			return err
		}
		u.TenantID = &t.ID
		u.Role = constants.Admin
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("tenant_id", t.ID.String()).Str("code", t.Code).Str("admin_id", u.ID.String()).Msg("tenant created")
	return t, u, nil
}

// GetCurrent returns the caller's tenant and its members ordered by name.
func (s *Service) GetCurrent(ctx context.Context, actor domain.Actor) (*View, error) {
	if actor.TenantID == nil {
		return nil, domain.NotFound("Tenant not found")
	}
	t, err := s.Store.Tenants().Get(ctx, *actor.TenantID)
	if err != nil {
		return nil, err
	}
	users, err := s.Store.Users().ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(users))
	for _, u := range users {
		members = append(members, Member{ID: u.ID, Fullname: u.FullName(), Email: u.Email, Role: u.Role})
	}
	return &View{Tenant: *t, Members: members}, nil
}
