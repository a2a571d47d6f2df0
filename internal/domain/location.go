package domain

import (
	"strings"
	"time"

	"easyshifthq-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxLocationNameLength     = 128
	MaxLocationAddressLength  = 500
	MaxTimeZoneLength         = 50
	MaxJurisdictionCodeLength = 10
	MaxLocationNotesLength    = 1000
)

type Location struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID         *uuid.UUID     `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id"`
	Name             string         `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Address          string         `gorm:"column:address;type:varchar(500);not null" json:"address"`
	TimeZone         string         `gorm:"column:time_zone;type:varchar(50);not null;index" json:"time_zone"`
	JurisdictionCode *string        `gorm:"column:jurisdiction_code;type:varchar(10);index" json:"jurisdiction_code"`
	Notes            *string        `gorm:"column:notes;type:varchar(1000)" json:"notes"`
	IsActive         bool           `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LocationFields carries the editable attributes of a location.
type LocationFields struct {
	Name             string
	Address          string
	TimeZone         string
	JurisdictionCode *string
	Notes            *string
}

// NewLocation builds an active location.
func NewLocation(tenantID *uuid.UUID, f LocationFields) (*Location, error) {
	l := &Location{TenantID: tenantID, IsActive: true}
	if err := l.Update(f); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Location) Update(f LocationFields) error {
	name := strings.TrimSpace(f.Name)
	address := strings.TrimSpace(f.Address)
	tz := strings.TrimSpace(f.TimeZone)
	switch {
	case name == "":
		return Validation("name", "Name is required")
	case !validation.MaxLen(name, MaxLocationNameLength):
		return Validation("name", "Name must be at most 128 characters")
	case address == "":
		return Validation("address", "Address is required")
	case !validation.MaxLen(address, MaxLocationAddressLength):
		return Validation("address", "Address must be at most 500 characters")
	case !validation.MaxLen(tz, MaxTimeZoneLength) || !validation.IsValidTimeZone(tz):
		return Validation("time_zone", "Time zone must be a valid IANA zone name")
	}
	jurisdiction := trimOptional(f.JurisdictionCode)
	if jurisdiction != nil && !validation.MaxLen(*jurisdiction, MaxJurisdictionCodeLength) {
		return Validation("jurisdiction_code", "Jurisdiction code must be at most 10 characters")
	}
	notes := trimOptional(f.Notes)
	if notes != nil && !validation.MaxLen(*notes, MaxLocationNotesLength) {
		return Validation("notes", "Notes must be at most 1000 characters")
	}
	l.Name = name
	l.Address = address
	l.TimeZone = tz
	l.JurisdictionCode = jurisdiction
	l.Notes = notes
	return nil
}

func (l *Location) SetActive(active bool) {
	l.IsActive = active
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
