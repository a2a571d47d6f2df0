package invitations

import (
	"context"

	authsvc "easyshifthq-backend/internal/application/auth"
	invsvc "easyshifthq-backend/internal/application/invitations"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/interfaces/handlers"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Handlers holds dependencies for invitation endpoints.
type Handlers struct {
	Service *invsvc.Service
	// Rdb and Config sign the invitee in after a public accept. Optional.
	Rdb    *redis.Client
	Config middleware.SessionConfig
}

type bulkRequest struct {
	Invitations []invsvc.CreateInput `json:"invitations"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *Handlers) views(invs []domain.Invitation) []invsvc.View {
	out := make([]invsvc.View, 0, len(invs))
	for _, inv := range invs {
		out = append(out, h.Service.Present(inv))
	}
	return out
}

// Create POST /api/v1/invitations
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req invsvc.CreateInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Invitation sent", h.Service.Present(*inv), nil)
}

// CreateBulk POST /api/v1/invitations/bulk. Entries that fail are skipped;
// compare metadata.created with metadata.requested to spot them.
func (h *Handlers) CreateBulk(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req bulkRequest
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	invs, err := h.Service.CreateBulk(c.UserContext(), actor, req.Invitations)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Invitations sent", h.views(invs), fiber.Map{
		"requested": len(req.Invitations),
		"created":   len(invs),
	})
}

// Pending GET /api/v1/invitations/pending
func (h *Handlers) Pending(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	invs, err := h.Service.GetPending(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pending invitations retrieved", h.views(invs), fiber.Map{"count": len(invs)})
}

// Accept POST /api/v1/invitations/:id/accept
func (h *Handlers) Accept(c *fiber.Ctx) error {
	return h.transition(c, "Invitation accepted", h.Service.Accept)
}

// Revoke POST /api/v1/invitations/:id/revoke
func (h *Handlers) Revoke(c *fiber.Ctx) error {
	return h.transition(c, "Invitation revoked", h.Service.Revoke)
}

// Resend POST /api/v1/invitations/:id/resend
func (h *Handlers) Resend(c *fiber.Ctx) error {
	return h.transition(c, "Invitation resent", h.Service.Resend)
}

func (h *Handlers) transition(c *fiber.Ctx, message string, fn func(context.Context, domain.Actor, uuid.UUID) (*domain.Invitation, error)) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	inv, err := fn(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, h.Service.Present(*inv), nil)
}

// VerifyToken POST /api/v1/invitations/public/verify-token. Anonymous.
func (h *Handlers) VerifyToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	inv, err := h.Service.VerifyToken(c.UserContext(), req.Token)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invitation is valid", h.Service.Present(*inv), nil)
}

// AcceptPublic POST /api/v1/invitations/public/accept. Anonymous; creates
// the invitee's account and signs it in.
func (h *Handlers) AcceptPublic(c *fiber.Ctx) error {
	var req invsvc.AcceptInput
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.AcceptWithAccount(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	su := authsvc.NewSessionUser(res.User)
	if h.Rdb != nil {
		if err := middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser(su)); err != nil {
			return response.FromError(c, err)
		}
	}
	return response.SuccessCreated(c, "Invitation accepted", fiber.Map{
		"invitation": h.Service.Present(*res.Invitation),
		"user":       su,
	}, nil)
}
