package auth

import (
	"time"

	authsvc "easyshifthq-backend/internal/application/auth"
	"easyshifthq-backend/internal/interfaces/handlers"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service   *authsvc.Service
	Rdb       *redis.Client
	Config    middleware.SessionConfig
	JWTSecret string
	JWTTTL    time.Duration
}

func userPayload(u authsvc.SessionUser) fiber.Map {
	return fiber.Map{"user": u}
}

// Login POST /api/v1/auth/login. Authenticates, starts a session and sets the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, authsvc.ErrEmailPasswordRequired)
	}
	user, err := h.Service.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	su := authsvc.NewSessionUser(user)
	if err := middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser(su)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", userPayload(su), nil)
}

// Register POST /api/v1/auth/register. Creates an account and signs it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req authsvc.RegisterInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	user, err := h.Service.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	su := authsvc.NewSessionUser(user)
	if err := middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser(su)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Registration successful", userPayload(su), nil)
}

// Token POST /api/v1/auth/token. Exchanges credentials for a bearer token.
func (h *Handlers) Token(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, authsvc.ErrEmailPasswordRequired)
	}
	user, err := h.Service.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	ttl := h.JWTTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := time.Now().UTC()
	su := authsvc.NewSessionUser(user)
	token, err := middleware.IssueToken(h.JWTSecret, middleware.SessionUser(su), ttl, now)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Token issued", fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   now.Add(ttl),
		"user":         su,
	}, nil)
}

// Me GET /api/v1/auth/me. Returns the signed-in user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	if sessionUser := middleware.GetUser(c); sessionUser != nil {
		user, err := authsvc.VerifyUser(sessionUser)
		if err == nil {
			return response.Success(c, "Authenticated", userPayload(*user), nil)
		}
	}
	actor, err := handlers.Actor(c)
	if err != nil {
		log.Debug().Bool("cookie_present", c.Cookies(middleware.SessionCookieName) != "").
			Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	su := authsvc.SessionUser{UserID: actor.UserID.String(), Fullname: actor.Name, Email: actor.Email, Role: actor.Role}
	if actor.TenantID != nil {
		t := actor.TenantID.String()
		su.TenantID = &t
	}
	return response.Success(c, "Authenticated", userPayload(su), nil)
}

// Logout DELETE /api/v1/auth/logout. Destroys the session and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	middleware.EndSession(c, h.Rdb, h.Config)
	return response.Success(c, "Logged out successfully", nil, nil)
}
