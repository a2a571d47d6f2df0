package persistence

import (
	"context"
	"strings"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type locationRepo struct {
	db *gorm.DB
}

func (r *locationRepo) Insert(ctx context.Context, l *domain.Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *locationRepo) Update(ctx context.Context, l *domain.Location) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *locationRepo) Get(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Location, error) {
	var l domain.Location
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).First(&l).Error
	if err != nil {
		return nil, notFound(err, "Location not found")
	}
	return &l, nil
}

func (r *locationRepo) Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("id = ?", id).Delete(&domain.Location{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Location not found")
	}
	return nil
}

var locationSortColumns = map[string]string{
	"name":             "name",
	"address":          "address",
	"timezone":         "time_zone",
	"jurisdictioncode": "jurisdiction_code",
	"isactive":         "is_active",
}

// locationOrder parses "<field> [asc|desc]"; unknown fields sort by name.
func locationOrder(sorting string) clause.OrderByColumn {
	fields := strings.Fields(strings.ToLower(sorting))
	col := "name"
	desc := false
	if len(fields) > 0 {
		if c, ok := locationSortColumns[fields[0]]; ok {
			col = c
		}
		desc = len(fields) > 1 && fields[1] == "desc"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}
}

func locationFilter(tenantID *uuid.UUID, f domain.LocationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(scopeTenant(tenantID))
		if text := strings.TrimSpace(f.Filter); text != "" {
			like := "%" + strings.ToLower(text) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(address) LIKE ?)", like, like)
		}
		if f.IsActive != nil {
			db = db.Where("is_active = ?", *f.IsActive)
		}
		if tz := strings.TrimSpace(f.TimeZone); tz != "" {
			db = db.Where("time_zone = ?", tz)
		}
		if code := strings.TrimSpace(f.JurisdictionCode); code != "" {
			db = db.Where("jurisdiction_code = ?", code)
		}
		return db
	}
}

func (r *locationRepo) List(ctx context.Context, tenantID *uuid.UUID, f domain.LocationFilter) (*domain.LocationPage, error) {
	var p domain.LocationPage
	if err := r.db.WithContext(ctx).Model(&domain.Location{}).Scopes(scopeTenant(tenantID)).Count(&p.TotalCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Location{}).Scopes(locationFilter(tenantID, f)).Count(&p.FilteredCount).Error; err != nil {
		return nil, err
	}
	skip, max := page(f.Skip, f.Max)
	err := r.db.WithContext(ctx).Scopes(locationFilter(tenantID, f)).
		Order(locationOrder(f.Sorting)).
		Offset(skip).Limit(max).
		Find(&p.Items).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *locationRepo) ListActive(ctx context.Context, tenantID *uuid.UUID) ([]domain.Location, error) {
	var items []domain.Location
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("is_active = ?", true).Order("name").Find(&items).Error
	return items, err
}

func (r *locationRepo) ListByJurisdiction(ctx context.Context, tenantID *uuid.UUID, code string) ([]domain.Location, error) {
	var items []domain.Location
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("jurisdiction_code = ?", code).Order("name").Find(&items).Error
	return items, err
}

func (r *locationRepo) ListByTimeZone(ctx context.Context, tenantID *uuid.UUID, tz string) ([]domain.Location, error) {
	var items []domain.Location
	err := r.db.WithContext(ctx).Scopes(scopeTenant(tenantID)).Where("time_zone = ?", tz).Order("name").Find(&items).Error
	return items, err
}

func (r *locationRepo) CountByIDs(ctx context.Context, tenantID *uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Location{}).Scopes(scopeTenant(tenantID)).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
