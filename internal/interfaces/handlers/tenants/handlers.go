package tenants

import (
	"time"

	authsvc "easyshifthq-backend/internal/application/auth"
	tenantsvc "easyshifthq-backend/internal/application/tenants"
	"easyshifthq-backend/internal/interfaces/handlers"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers holds dependencies for tenant endpoints.
type Handlers struct {
	Service   *tenantsvc.Service
	Rdb       *redis.Client
	Config    middleware.SessionConfig
	JWTSecret string
	JWTTTL    time.Duration
}

// Create POST /api/v1/tenants. The caller becomes the tenant's admin, so the
// session is reissued (or a fresh token returned for bearer callers) with the
// new tenant and role.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req tenantsvc.CreateInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	tenant, user, err := h.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return response.FromError(c, err)
	}

	su := authsvc.NewSessionUser(user)
	data := fiber.Map{"tenant": tenant, "user": su}
	if h.Rdb != nil {
		// Every open session still carries the old tenant and role.
		middleware.DestroyUserSessions(c.UserContext(), h.Rdb, su.UserID)
	}
	if middleware.GetUser(c) != nil && h.Rdb != nil {
		middleware.DestroySession(c)
		if err := middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser(su)); err != nil {
			return response.FromError(c, err)
		}
	} else if h.JWTSecret != "" {
		ttl := h.JWTTTL
		if ttl <= 0 {
			ttl = 12 * time.Hour
		}
		token, err := middleware.IssueToken(h.JWTSecret, middleware.SessionUser(su), ttl, time.Now().UTC())
		if err != nil {
			return response.FromError(c, err)
		}
		data["access_token"] = token
	}
	return response.SuccessCreated(c, "Tenant created", data, nil)
}

// Current GET /api/v1/tenants/current
func (h *Handlers) Current(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	view, err := h.Service.GetCurrent(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Tenant retrieved", view, nil)
}
