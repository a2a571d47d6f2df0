package auth

import (
	"context"
	"strings"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"
	"easyshifthq-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailPasswordRequired = domain.Validation("email", "Email and password are required")
	ErrInvalidCredentials    = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Invalid email or password"}
	ErrNotAuthenticated      = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Not authenticated"}
)

// Service authenticates users and registers host-level accounts.
type Service struct {
	Store      domain.UnitOfWork
	BcryptCost int
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SessionUser is the object stored in the session and returned by /me.
type SessionUser struct {
	UserID   string  `json:"user_id"`
	Fullname string  `json:"fullname"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id"`
}

// NewSessionUser builds the session shape for u.
func NewSessionUser(u *domain.User) SessionUser {
	var tenantID *string
	if u.TenantID != nil {
		s := u.TenantID.String()
		tenantID = &s
	}
	return SessionUser{
		UserID:   u.ID.String(),
		Fullname: u.FullName(),
		Email:    u.Email,
		Role:     u.Role,
		TenantID: tenantID,
	}
}

// Login finds the account with the given email whose password matches.
// An email may exist in several tenants; the first matching password wins.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	users, err := s.Store.Users().FindByEmailAnyTenant(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		if u.PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) == nil {
			return u, nil
		}
	}
	log.Info().Str("email", email).Int("candidates", len(users)).Msg("login rejected")
	return nil, ErrInvalidCredentials
}

// Register creates a host-level employee account. Creating a tenant later
// promotes it to that tenant's admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := validation.NormalizeEmail(in.Email)
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	switch {
	case !validation.IsValidEmail(email):
		return nil, domain.Validation("email", "Invalid email format")
	case !validation.IsValidPassword(in.Password):
		return nil, domain.Validation("password", "Password must be at least 8 characters and include a letter, a number and a special character")
	case first == "" || !validation.IsValidPersonName(first) || !validation.MaxLen(first, domain.MaxPersonNameLength):
		return nil, domain.Validation("first_name", "Invalid first name")
	case last == "" || !validation.IsValidPersonName(last) || !validation.MaxLen(last, domain.MaxPersonNameLength):
		return nil, domain.Validation("last_name", "Invalid last name")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, FirstName: first, LastName: last, PasswordHash: string(hash), Role: constants.Employee}
	err = s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		exists, err := tx.Users().EmailExists(ctx, nil, email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrUserAlreadyExists
		}
		return tx.Users().Insert(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("user registered")
	return u, nil
}

func (s *Service) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

// VerifyUser validates the session user map and returns the /me shape.
func VerifyUser(sessionUser any) (*SessionUser, error) {
	m, ok := sessionUser.(map[string]any)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	out := &SessionUser{
		UserID:   userID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
		Role:     str(m["role"]),
	}
	if t, ok := m["tenant_id"].(string); ok && t != "" {
		out.TenantID = &t
	}
	return out, nil
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
