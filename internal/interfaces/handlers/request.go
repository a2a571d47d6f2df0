// Package handlers holds request helpers shared by the HTTP handler packages.
package handlers

import (
	"strings"
	"time"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Actor returns the authenticated caller or ErrNotAuthenticated.
func Actor(c *fiber.Ctx) (domain.Actor, error) {
	a, ok := middleware.GetActor(c)
	if !ok {
		return domain.Actor{}, domain.ErrNotAuthenticated
	}
	return a, nil
}

// UUIDParam parses a path parameter as a uuid.
func UUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, domain.Validation(name, "Invalid "+name)
	}
	return id, nil
}

// ParseBody decodes the JSON body into v.
func ParseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return domain.Validation("body", "Invalid request body")
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. A timestamp yields
// the calendar date in its own offset, as midnight UTC.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.Validation(field, field+" is required")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Validation(field, field+" must be a date (YYYY-MM-DD)")
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// OptionalDateQuery parses an optional date query parameter.
func OptionalDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	if c.Query(name) == "" {
		return nil, nil
	}
	t, err := ParseDate(name, c.Query(name))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// OptionalUUIDQuery parses an optional uuid query parameter.
func OptionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	if c.Query(name) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		return nil, domain.Validation(name, "Invalid "+name)
	}
	return &id, nil
}
