package middleware

import (
	"fmt"
	"strings"
	"time"

	"easyshifthq-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "easyshifthq"

// Claims are the bearer token claims; the subject is the user id.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the session user.
func IssueToken(secret string, user SessionUser, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}
	claims := Claims{
		Role:  user.Role,
		Name:  user.Fullname,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.TenantID != nil {
		claims.TenantID = *user.TenantID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// BearerAuth resolves the actor from an "Authorization: Bearer" header.
// Requests without the header fall through to the session.
func BearerAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if secret == "" || !strings.HasPrefix(h, "Bearer ") {
			return c.Next()
		}
		claims, err := ParseToken(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return response.Unauthorized(c, "Invalid token")
		}
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return response.Unauthorized(c, "Invalid token")
		}
		var tenantID *uuid.UUID
		if t, err := uuid.Parse(claims.TenantID); err == nil {
			tenantID = &t
		}
		c.Locals(actorLocal, newActor(id, tenantID, claims.Name, claims.Email, claims.Role))
		return c.Next()
	}
}
