package middleware

import (
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	userLocal  = "user"
	actorLocal = "actor"
)

// RequireAuth ensures the request carries a session user or a valid bearer
// token. Returns 401 with the standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetActor(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetActor resolves the caller. A bearer token wins over the session.
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	if a, ok := c.Locals(actorLocal).(domain.Actor); ok {
		return a, true
	}
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return domain.Actor{}, false
	}
	id, err := uuid.Parse(str(m["user_id"]))
	if err != nil {
		return domain.Actor{}, false
	}
	var tenantID *uuid.UUID
	if t, err := uuid.Parse(str(m["tenant_id"])); err == nil {
		tenantID = &t
	}
	return newActor(id, tenantID, str(m["fullname"]), str(m["email"]), str(m["role"])), true
}

func newActor(id uuid.UUID, tenantID *uuid.UUID, name, email, role string) domain.Actor {
	return domain.Actor{
		UserID:      id,
		TenantID:    tenantID,
		Name:        name,
		Email:       email,
		Role:        role,
		Permissions: constants.PermissionsForRole(role),
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
