package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repositories read and write tenant-owned rows. Every tenant-scoped method
// takes the tenant explicitly; a nil tenant addresses host-level rows.
type Repositories interface {
	Invitations() InvitationRepository
	Availabilities() AvailabilityRepository
	Locations() LocationRepository
	Users() UserRepository
	Tenants() TenantRepository
	Outbox() OutboxRepository
}

// UnitOfWork runs fn against repositories bound to one transaction. The
// transaction commits when fn returns nil.
type UnitOfWork interface {
	Repositories
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
}

type InvitationRepository interface {
	Insert(ctx context.Context, inv *Invitation, locationIDs []uuid.UUID) error
	Update(ctx context.Context, inv *Invitation) error
	Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*Invitation, error)
	// ListPending returns pending, unexpired invitations, newest first.
	ListPending(ctx context.Context, tenantID *uuid.UUID, now time.Time) ([]Invitation, error)
	// ListPendingAllTenants returns every pending invitation, expired ones included.
	ListPendingAllTenants(ctx context.Context) ([]Invitation, error)
	HasPendingForEmail(ctx context.Context, tenantID *uuid.UUID, email string, now time.Time) (bool, error)
}

type AvailabilityFilter struct {
	EmployeeID       *uuid.UUID
	DayOfWeek        *DayOfWeek
	TimeOffStartDate *time.Time
	TimeOffEndDate   *time.Time
	Skip             int
	Max              int
}

type AvailabilityRepository interface {
	Insert(ctx context.Context, a *Availability) error
	Update(ctx context.Context, a *Availability) error
	Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*Availability, error)
	Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, f AvailabilityFilter) ([]Availability, int64, error)
	ListWeekly(ctx context.Context, tenantID *uuid.UUID, employeeID uuid.UUID) ([]Availability, error)
	ListTimeOff(ctx context.Context, tenantID *uuid.UUID, employeeID uuid.UUID) ([]Availability, error)
}

type LocationFilter struct {
	Filter           string
	IsActive         *bool
	TimeZone         string
	JurisdictionCode string
	Sorting          string
	Skip             int
	Max              int
}

// LocationPage is one page of a filtered location listing.
type LocationPage struct {
	Items         []Location
	TotalCount    int64
	FilteredCount int64
}

type LocationRepository interface {
	Insert(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*Location, error)
	Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, f LocationFilter) (*LocationPage, error)
	ListActive(ctx context.Context, tenantID *uuid.UUID) ([]Location, error)
	ListByJurisdiction(ctx context.Context, tenantID *uuid.UUID, code string) ([]Location, error)
	ListByTimeZone(ctx context.Context, tenantID *uuid.UUID, tz string) ([]Location, error)
	CountByIDs(ctx context.Context, tenantID *uuid.UUID, ids []uuid.UUID) (int64, error)
}

type UserRepository interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*User, error)
	// GetAnyTenant loads a user by id without tenant scoping (session refresh).
	GetAnyTenant(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*User, error)
	// FindByEmailAnyTenant returns every user with the email across tenants.
	FindByEmailAnyTenant(ctx context.Context, email string) ([]User, error)
	EmailExists(ctx context.Context, tenantID *uuid.UUID, email string) (bool, error)
	ListByRoles(ctx context.Context, tenantID *uuid.UUID, roles ...string) ([]User, error)
	ListByTenant(ctx context.Context, tenantID *uuid.UUID) ([]User, error)
}

type TenantRepository interface {
	Insert(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, id uuid.UUID) (*Tenant, error)
	NameExists(ctx context.Context, name string) (bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, m *OutboxMessage) error
	// ClaimDue leases up to limit due messages for delivery.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
	CountBacklog(ctx context.Context) (int64, error)
}
