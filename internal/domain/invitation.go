package domain

import (
	"strings"
	"time"

	"easyshifthq-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	// InvitationExpired is never stored; it is derived from ExpiresAt.
	InvitationExpired InvitationStatus = "expired"
)

const (
	InvitationLifetime    = 7 * 24 * time.Hour
	MaxInvitationLifetime = 30 * 24 * time.Hour
	MaxTokenHashLength    = 128
	MaxPersonNameLength   = 64
)

type Invitation struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID    *uuid.UUID       `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id"`
	Email       string           `gorm:"column:email;not null;index" json:"email"`
	FirstName   string           `gorm:"column:first_name;type:varchar(64);not null" json:"first_name"`
	LastName    string           `gorm:"column:last_name;type:varchar(64);not null" json:"last_name"`
	Role        string           `gorm:"column:role;type:varchar(32);not null" json:"role"`
	LocationID  *uuid.UUID       `gorm:"column:location_id;type:uuid" json:"location_id"`
	TokenHash   string           `gorm:"column:token_hash;type:varchar(128);not null" json:"-"`
	ExpiresAt   time.Time        `gorm:"column:expires_at;not null" json:"expires_at"`
	Status      InvitationStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	CreatedBy   *uuid.UUID       `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	LocationIDs []uuid.UUID      `gorm:"-" json:"location_ids"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvitationLocation links an invitation to one of the tenant's locations.
type InvitationLocation struct {
	InvitationID uuid.UUID  `gorm:"column:invitation_id;type:uuid;primaryKey" json:"invitation_id"`
	LocationID   uuid.UUID  `gorm:"column:location_id;type:uuid;primaryKey" json:"location_id"`
	TenantID     *uuid.UUID `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id"`
}

func (InvitationLocation) TableName() string {
	return "invitation_locations"
}

// NewInvitation builds a pending invitation expiring InvitationLifetime after now.
func NewInvitation(tenantID *uuid.UUID, email, firstName, lastName, role, tokenHash string, now time.Time) (*Invitation, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil, Validation("email", "Email is required")
	}
	if !validation.IsValidEmail(email) {
		return nil, Validation("email", "Email is not valid")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if err := checkPersonName("first_name", firstName); err != nil {
		return nil, err
	}
	if err := checkPersonName("last_name", lastName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(role) == "" {
		return nil, Validation("role", "Role is required")
	}

	inv := &Invitation{
		TenantID:  tenantID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Status:    InvitationPending,
	}
	if err := inv.SetTokenHash(tokenHash); err != nil {
		return nil, err
	}
	if err := inv.SetExpiresAt(now.Add(InvitationLifetime).UTC(), now); err != nil {
		return nil, err
	}
	return inv, nil
}

func checkPersonName(field, name string) error {
	if name == "" {
		return Validation(field, "Name is required")
	}
	if !validation.MaxLen(name, MaxPersonNameLength) {
		return Validation(field, "Name must be at most 64 characters")
	}
	if !validation.IsValidPersonName(name) {
		return Validation(field, "Name contains invalid characters")
	}
	return nil
}

// IsExpired reports whether now is past the expiry instant.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EffectiveStatus reports Expired for a pending invitation past its expiry.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}

func (i *Invitation) SetTokenHash(hash string) error {
	if strings.TrimSpace(hash) == "" {
		return Validation("token_hash", "Token hash is required")
	}
	if len(hash) > MaxTokenHashLength {
		return Validation("token_hash", "Token hash is too long")
	}
	i.TokenHash = hash
	return nil
}

// SetExpiresAt requires a UTC instant after now and no more than
// MaxInvitationLifetime ahead of it.
func (i *Invitation) SetExpiresAt(expiresAt, now time.Time) error {
	if expiresAt.Location() != time.UTC {
		return Validation("expires_at", "Expiration must be in UTC")
	}
	if !expiresAt.After(now) {
		return Validation("expires_at", "Expiration must be in the future")
	}
	if expiresAt.Sub(now) > MaxInvitationLifetime {
		return Validation("expires_at", "Expiration must be within 30 days")
	}
	i.ExpiresAt = expiresAt
	return nil
}

func (i *Invitation) SetLocationID(id uuid.UUID) error {
	if id == uuid.Nil {
		return Validation("location_id", "Location is required")
	}
	i.LocationID = &id
	return nil
}

func (i *Invitation) checkOpen(now time.Time) error {
	if i.Status != InvitationPending {
		return ErrInvitationNotPending
	}
	if i.IsExpired(now) {
		return ErrInvitationExpired
	}
	return nil
}

func (i *Invitation) Accept(now time.Time) error {
	if err := i.checkOpen(now); err != nil {
		return err
	}
	i.Status = InvitationAccepted
	return nil
}

func (i *Invitation) Revoke(now time.Time) error {
	if err := i.checkOpen(now); err != nil {
		return err
	}
	i.Status = InvitationRevoked
	return nil
}

// Reissue swaps in a fresh token hash and restarts the expiry window.
// Pending invitations past their expiry may be reissued.
func (i *Invitation) Reissue(tokenHash string, now time.Time) error {
	if i.Status != InvitationPending {
		return ErrInvitationNotPending
	}
	if err := i.SetTokenHash(tokenHash); err != nil {
		return err
	}
	return i.SetExpiresAt(now.Add(InvitationLifetime).UTC(), now)
}
