package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal identity record: login, role, and the contact data
// notifications need.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID     *uuid.UUID     `gorm:"column:tenant_id;type:uuid;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	FirstName    string         `gorm:"column:first_name;type:varchar(64)" json:"first_name"`
	LastName     string         `gorm:"column:last_name;type:varchar(64)" json:"last_name"`
	PasswordHash string         `gorm:"column:password_hash" json:"-"`
	Role         string         `gorm:"column:role;type:varchar(32);not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
