package invitations

import (
	"context"
	"net/url"
	"strings"
	"time"

	"easyshifthq-backend/internal/application/emails"
	"easyshifthq-backend/internal/application/policies"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/observability/metrics"
	"easyshifthq-backend/internal/pkg/constants"
	"easyshifthq-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service runs the invitation lifecycle: create, verify, accept, revoke, resend.
type Service struct {
	Store       domain.UnitOfWork
	EmailSender emails.Sender // nil = no-op
	Hasher      TokenHasher   // nil = bcrypt at default cost
	BaseURL     string
	SSOEnabled  bool
	Now         func() time.Time
}

type CreateInput struct {
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Role        string      `json:"role"`
	LocationIDs []uuid.UUID `json:"location_ids"`
}

type AcceptInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AcceptResult struct {
	Invitation *domain.Invitation `json:"invitation"`
	User       *domain.User       `json:"user"`
}

// View is the read model of an invitation; Status reports expired for
// pending invitations past their expiry.
type View struct {
	domain.Invitation
	Status domain.InvitationStatus `json:"status"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) hasher() TokenHasher {
	if s.Hasher != nil {
		return s.Hasher
	}
	return BcryptHasher{}
}

// Present builds the read model of inv.
func (s *Service) Present(inv domain.Invitation) View {
	return View{Invitation: inv, Status: inv.EffectiveStatus(s.now())}
}

// Create invites one person into the actor's tenant and emails them the
// accept link. Email delivery failures are logged, not returned.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Invitation, error) {
	inv, err := s.create(ctx, actor, in)
	metrics.ObserveInvitation("create", err)
	return inv, err
}

func (s *Service) create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Invitation, error) {
	if err := policies.RequirePermission(actor, constants.InvitationCreate); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		return nil, domain.Validation("role", "Role is required")
	}
	if err := policies.ValidateInviteRole(actor, role); err != nil {
		return nil, err
	}
	locationIDs, err := uniqueLocationIDs(in.LocationIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher().Hash(token)
	if err != nil {
		return nil, err
	}
	inv, err := domain.NewInvitation(actor.TenantID, in.Email, in.FirstName, in.LastName, role, hash, now)
	if err != nil {
		return nil, err
	}
	if len(locationIDs) > 0 {
		if err := inv.SetLocationID(locationIDs[0]); err != nil {
			return nil, err
		}
	}
	if actor.UserID != uuid.Nil {
		createdBy := actor.UserID
		inv.CreatedBy = &createdBy
	}

	err = s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		if err := policies.ValidateInviteCreation(ctx, tx, actor, inv.Email, now); err != nil {
			return err
		}
		if len(locationIDs) > 0 {
			n, err := tx.Locations().CountByIDs(ctx, actor.TenantID, locationIDs)
			if err != nil {
				return err
			}
			if n != int64(len(locationIDs)) {
				return domain.Validation("location_ids", "One or more locations were not found")
			}
		}
		return tx.Invitations().Insert(ctx, inv, locationIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("invitation_id", inv.ID.String()).Str("role", inv.Role).Msg("invitation created")
	s.sendInvitation(ctx, inv, token)
	return inv, nil
}

func uniqueLocationIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, domain.Validation("location_ids", "Location id is invalid")
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// CreateBulk creates each entry independently; failed entries are logged
// and skipped. Only the invitations that were created are returned.
func (s *Service) CreateBulk(ctx context.Context, actor domain.Actor, inputs []CreateInput) ([]domain.Invitation, error) {
	if err := policies.RequirePermission(actor, constants.InvitationBulkCreate); err != nil {
		return nil, err
	}
	created := make([]domain.Invitation, 0, len(inputs))
	for i, in := range inputs {
		inv, err := s.Create(ctx, actor, in)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Str("email", in.Email).Msg("bulk invitation skipped")
			continue
		}
		created = append(created, *inv)
	}
	return created, nil
}

// GetPending lists the tenant's open invitations, newest first.
func (s *Service) GetPending(ctx context.Context, actor domain.Actor) ([]domain.Invitation, error) {
	if err := policies.RequirePermission(actor, constants.InvitationView); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListPending(ctx, actor.TenantID, s.now())
}

// VerifyToken finds the pending invitation whose hash matches token. Tokens
// are hashed with a per-hash salt, so every pending invitation is checked.
func (s *Service) VerifyToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := s.verifyToken(ctx, s.Store, token)
	metrics.ObserveInvitation("verify", err)
	return inv, err
}

func (s *Service) verifyToken(ctx context.Context, repos domain.Repositories, token string) (*domain.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	candidates, err := repos.Invitations().ListPendingAllTenants(ctx)
	if err != nil {
		return nil, err
	}
	h := s.hasher()
	var match *domain.Invitation
	for i := range candidates {
		if h.Compare(candidates[i].TokenHash, token) {
			match = &candidates[i]
			break
		}
	}
	if match == nil {
		return nil, domain.ErrInvalidToken
	}
	if match.IsExpired(s.now()) {
		return nil, domain.ErrInvitationExpired
	}
	exists, err := repos.Users().EmailExists(ctx, match.TenantID, match.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}
	return repos.Invitations().Get(ctx, match.TenantID, match.ID)
}

// Accept marks a pending, unexpired invitation accepted.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invitation, error) {
	inv, err := s.transition(ctx, actor, id, func(inv *domain.Invitation, now time.Time) error {
		return inv.Accept(now)
	})
	metrics.ObserveInvitation("accept", err)
	return inv, err
}

// Revoke withdraws a pending, unexpired invitation.
func (s *Service) Revoke(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invitation, error) {
	inv, err := s.transition(ctx, actor, id, func(inv *domain.Invitation, now time.Time) error {
		return inv.Revoke(now)
	})
	metrics.ObserveInvitation("revoke", err)
	return inv, err
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, apply func(*domain.Invitation, time.Time) error) (*domain.Invitation, error) {
	if err := policies.RequirePermission(actor, constants.InvitationManage); err != nil {
		return nil, err
	}
	var inv *domain.Invitation
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		var err error
		inv, err = tx.Invitations().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := apply(inv, s.now()); err != nil {
			return err
		}
		return tx.Invitations().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("invitation_id", inv.ID.String()).Str("status", string(inv.Status)).Msg("invitation updated")
	return inv, nil
}

// Resend issues a fresh token for a pending invitation, restarts its expiry
// window and emails the new link. The previous token stops working.
func (s *Service) Resend(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invitation, error) {
	inv, err := s.resend(ctx, actor, id)
	metrics.ObserveInvitation("resend", err)
	return inv, err
}

func (s *Service) resend(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invitation, error) {
	if err := policies.RequirePermission(actor, constants.InvitationManage); err != nil {
		return nil, err
	}
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher().Hash(token)
	if err != nil {
		return nil, err
	}
	var inv *domain.Invitation
	err = s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		var err error
		inv, err = tx.Invitations().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := inv.Reissue(hash, s.now()); err != nil {
			return err
		}
		return tx.Invitations().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.sendInvitation(ctx, inv, token)
	return inv, nil
}

// AcceptWithAccount redeems a token: it creates the invitee's account with
// the invited role and accepts the invitation in one transaction. A password
// is required unless sign-in goes through SSO.
func (s *Service) AcceptWithAccount(ctx context.Context, in AcceptInput) (*AcceptResult, error) {
	res, err := s.acceptWithAccount(ctx, in)
	metrics.ObserveInvitation("redeem", err)
	return res, err
}

func (s *Service) acceptWithAccount(ctx context.Context, in AcceptInput) (*AcceptResult, error) {
	var passwordHash string
	if !s.SSOEnabled {
		if in.Password == "" {
			return nil, domain.Validation("password", "Password is required")
		}
		if !validation.IsValidPassword(in.Password) {
			return nil, domain.Validation("password", "Password must be at least 8 characters and include a letter, a number and a special character")
		}
		h, err := s.hasher().Hash(in.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = h
	}

	var result AcceptResult
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		inv, err := s.verifyToken(ctx, tx, in.Token)
		if err != nil {
			return err
		}
		user := &domain.User{
			TenantID:     inv.TenantID,
			Email:        inv.Email,
			FirstName:    inv.FirstName,
			LastName:     inv.LastName,
			PasswordHash: passwordHash,
			Role:         inv.Role,
		}
		if err := tx.Users().Insert(ctx, user); err != nil {
			return err
		}
		if err := inv.Accept(s.now()); err != nil {
			return err
		}
		if err := tx.Invitations().Update(ctx, inv); err != nil {
			return err
		}
		result = AcceptResult{Invitation: inv, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("invitation_id", result.Invitation.ID.String()).Str("user_id", result.User.ID.String()).Msg("invitation redeemed")
	return &result, nil
}

func (s *Service) sendInvitation(ctx context.Context, inv *domain.Invitation, token string) {
	if s.EmailSender == nil {
		return
	}
	subject, html := emails.InvitationEmail(emails.InvitationData{
		FirstName:  inv.FirstName,
		TenantName: s.tenantName(ctx, inv.TenantID),
		Role:       inv.Role,
		AcceptURL:  s.AcceptURL(token),
		SSO:        s.SSOEnabled,
	})
	if err := s.EmailSender.Send(ctx, inv.Email, subject, html); err != nil {
		log.Warn().Err(err).Str("invitation_id", inv.ID.String()).Msg("invitation email failed")
	}
}

// AcceptURL is the link embedded in invitation emails.
func (s *Service) AcceptURL(token string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/acceptinvitation?token=" + url.QueryEscape(token)
}

func (s *Service) tenantName(ctx context.Context, tenantID *uuid.UUID) string {
	if tenantID == nil {
		return ""
	}
	t, err := s.Store.Tenants().Get(ctx, *tenantID)
	if err != nil {
		return ""
	}
	return t.Name
}
