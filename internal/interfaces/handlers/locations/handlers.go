package locations

import (
	"net/url"
	"strconv"

	locsvc "easyshifthq-backend/internal/application/locations"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/interfaces/handlers"
	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for location endpoints.
type Handlers struct {
	Service *locsvc.Service
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

// Get GET /api/v1/locations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	l, err := h.Service.Get(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Location retrieved", l, nil)
}

// List GET /api/v1/locations?filter=&is_active=&time_zone=&jurisdiction_code=&sorting=&skip=&max=
func (h *Handlers) List(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	f := domain.LocationFilter{
		Filter:           c.Query("filter"),
		TimeZone:         c.Query("time_zone"),
		JurisdictionCode: c.Query("jurisdiction_code"),
		Sorting:          c.Query("sorting"),
		Skip:             c.QueryInt("skip", 0),
		Max:              c.QueryInt("max", 0),
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return response.FromError(c, domain.Validation("is_active", "is_active must be true or false"))
		}
		f.IsActive = &active
	}
	res, err := h.Service.List(c.UserContext(), actor, f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Locations retrieved", res, nil)
}

// Active GET /api/v1/locations/active
func (h *Handlers) Active(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.Active(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Active locations retrieved", items, nil)
}

// ByJurisdiction GET /api/v1/locations/jurisdiction/:code
func (h *Handlers) ByJurisdiction(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.ByJurisdiction(c.UserContext(), actor, c.Params("code"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Locations retrieved", items, nil)
}

// ByTimeZone GET /api/v1/locations/timezone/*. Zone names contain slashes,
// e.g. /timezone/America/Chicago.
func (h *Handlers) ByTimeZone(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	tz, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return response.FromError(c, domain.Validation("time_zone", "Invalid time zone"))
	}
	items, err := h.Service.ByTimeZone(c.UserContext(), actor, tz)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Locations retrieved", items, nil)
}

// Create POST /api/v1/locations
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req locsvc.Input
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	l, err := h.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Location created", l, nil)
}

// Update PUT /api/v1/locations/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req locsvc.Input
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	l, err := h.Service.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Location updated", l, nil)
}

// SetActive PATCH /api/v1/locations/:id/active with {"is_active": bool}.
func (h *Handlers) SetActive(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req activeRequest
	if err := handlers.ParseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.IsActive == nil {
		return response.FromError(c, domain.Validation("is_active", "is_active is required"))
	}
	l, err := h.Service.SetActive(c.UserContext(), actor, id, *req.IsActive)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Location updated", l, nil)
}

// Delete DELETE /api/v1/locations/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor, err := handlers.Actor(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := handlers.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), actor, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Location deleted", nil, nil)
}
