package persistence

import (
	"context"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type availabilityRepo struct {
	db *gorm.DB
}

func (r *availabilityRepo) Insert(ctx context.Context, a *domain.Availability) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *availabilityRepo) Update(ctx context.Context, a *domain.Availability) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *availabilityRepo) Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Availability, error) {
	var a domain.Availability
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, notFound(err, "Availability not found")
	}
	return &a, nil
}

func (r *availabilityRepo) Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).Delete(&domain.Availability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Availability not found")
	}
	return nil
}

func availabilityFilter(tenantID *uuid.UUID, f domain.AvailabilityFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(scopeTenant(tenantID))
		if f.EmployeeID != nil {
			db = db.Where("employee_id = ?", *f.EmployeeID)
		}
		if f.DayOfWeek != nil {
			db = db.Where("day_of_week = ? AND time_off_start_date IS NULL", *f.DayOfWeek)
		}
		if f.TimeOffStartDate != nil {
			db = db.Where("time_off_start_date <= ?", domain.DateOf(*f.TimeOffStartDate))
		}
		if f.TimeOffEndDate != nil {
			db = db.Where("time_off_end_date >= ?", domain.DateOf(*f.TimeOffEndDate))
		}
		return db
	}
}

func (r *availabilityRepo) List(ctx context.Context, tenantID *uuid.UUID, f domain.AvailabilityFilter) ([]domain.Availability, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Availability{}).Scopes(availabilityFilter(tenantID, f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	skip, max := page(f.Skip, f.Max)
	var items []domain.Availability
	err := r.db.WithContext(ctx).Scopes(availabilityFilter(tenantID, f)).
		Order("day_of_week, start_time, time_off_start_date").
		Offset(skip).Limit(max).
		Find(&items).Error
	return items, total, err
}

func (r *availabilityRepo) ListWeekly(ctx context.Context, tenantID *uuid.UUID, employeeID uuid.UUID) ([]domain.Availability, error) {
	var items []domain.Availability
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).
		Where("employee_id = ? AND time_off_start_date IS NULL AND time_off_end_date IS NULL", employeeID).
		Order("day_of_week, start_time").
		Find(&items).Error
	return items, err
}

func (r *availabilityRepo) ListTimeOff(ctx context.Context, tenantID *uuid.UUID, employeeID uuid.UUID) ([]domain.Availability, error) {
	var items []domain.Availability
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).
		Where("employee_id = ? AND time_off_start_date IS NOT NULL AND time_off_end_date IS NOT NULL", employeeID).
		Order("time_off_start_date DESC").
		Find(&items).Error
	return items, err
}
