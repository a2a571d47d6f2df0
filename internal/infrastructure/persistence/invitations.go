package persistence

import (
	"context"
	"time"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type invitationRepo struct {
	db *gorm.DB
}

func (r *invitationRepo) Insert(ctx context.Context, inv *domain.Invitation, locationIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(inv).Error; err != nil {
		return err
	}
	if len(locationIDs) > 0 {
		links := make([]domain.InvitationLocation, 0, len(locationIDs))
		for _, id := range locationIDs {
			links = append(links, domain.InvitationLocation{InvitationID: inv.ID, LocationID: id, TenantID: inv.TenantID})
		}
		if err := db.Create(&links).Error; err != nil {
			return err
		}
	}
	inv.LocationIDs = locationIDs
	return nil
}

func (r *invitationRepo) Update(ctx context.Context, inv *domain.Invitation) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *invitationRepo) Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).First(&inv).Error
	if err != nil {
		return nil, notFound(err, "Invitation not found")
	}
	list := []domain.Invitation{inv}
	if err := r.attachLocations(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *invitationRepo) ListPending(ctx context.Context, tenantID *uuid.UUID, now time.Time) ([]domain.Invitation, error) {
	var list []domain.Invitation
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).
		Where("status = ? AND expires_at > ?", domain.InvitationPending, now.UTC()).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, r.attachLocations(ctx, list)
}

func (r *invitationRepo) ListPendingAllTenants(ctx context.Context) ([]domain.Invitation, error) {
	var list []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.InvitationPending).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *invitationRepo) HasPendingForEmail(ctx context.Context, tenantID *uuid.UUID, email string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invitation{}).Scopes(scopeTenant(tenantID)).
		Where("email = ? AND status = ? AND expires_at > ?", email, domain.InvitationPending, now.UTC()).
		Count(&count).Error
	return count > 0, err
}

func (r *invitationRepo) attachLocations(ctx context.Context, list []domain.Invitation) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	var links []domain.InvitationLocation
	if err := r.db.WithContext(ctx).Where("invitation_id IN ?", ids).Find(&links).Error; err != nil {
		return err
	}
	byInvitation := make(map[uuid.UUID][]uuid.UUID, len(list))
	for _, l := range links {
		byInvitation[l.InvitationID] = append(byInvitation[l.InvitationID], l.LocationID)
	}
	for i := range list {
		list[i].LocationIDs = byInvitation[list[i].ID]
		if list[i].LocationIDs == nil {
			list[i].LocationIDs = []uuid.UUID{}
		}
	}
	return nil
}
