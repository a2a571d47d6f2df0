package persistence

import (
	"context"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantRepo struct {
	db *gorm.DB
}

func (r *tenantRepo) Insert(ctx context.Context, t *domain.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tenantRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err, "Tenant not found")
	}
	return &t, nil
}

func (r *tenantRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Tenant{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *tenantRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Tenant{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
