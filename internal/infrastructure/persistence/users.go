package persistence

import (
	"context"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Insert(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *userRepo) GetAnyTenant(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *userRepo) FindByEmailAnyTenant(ctx context.Context, email string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("created_at").Find(&users).Error
	return users, err
}

func (r *userRepo) EmailExists(ctx context.Context, tenantID *uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Scopes(scopeTenant(tenantID)).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepo) ListByRoles(ctx context.Context, tenantID *uuid.UUID, roles ...string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).
		Where("role IN ? AND email <> ''", roles).
		Order("email").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListByTenant(ctx context.Context, tenantID *uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Order("last_name, first_name").Find(&users).Error
	return users, err
}
