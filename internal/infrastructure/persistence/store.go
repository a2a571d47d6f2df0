package persistence

import (
	"context"
	"errors"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store hands out gorm-backed repositories bound to one *gorm.DB, which is
// either the pool or an open transaction.
type Store struct {
	db *gorm.DB
}

var _ domain.UnitOfWork = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Invitations() domain.InvitationRepository { return &invitationRepo{db: s.db} }
func (s *Store) Availabilities() domain.AvailabilityRepository { return &availabilityRepo{db: s.db} }
func (s *Store) Locations() domain.LocationRepository { return &locationRepo{db: s.db} }
func (s *Store) Users() domain.UserRepository { return &userRepo{db: s.db} }
func (s *Store) Tenants() domain.TenantRepository { return &tenantRepo{db: s.db} }
func (s *Store) Outbox() domain.OutboxRepository { return &outboxRepo{db: s.db} }

func (s *Store) Transaction(ctx context.Context, fn func(tx domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// scopeTenant restricts a query to one tenant; nil selects host rows.
func scopeTenant(tenantID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == nil {
			return db.Where("tenant_id IS NULL")
		}
		return db.Where("tenant_id = ?", *tenantID)
	}
}

func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(message)
	}
	return err
}

func page(skip, max int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if max <= 0 {
		max = DefaultPageSize
	}
	if max > MaxPageSize {
		max = MaxPageSize
	}
	return skip, max
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)
