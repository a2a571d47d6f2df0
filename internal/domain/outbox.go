package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxMessage is a notification written in the same transaction as the
// state change it describes and delivered later by the outbox worker.
type OutboxMessage struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID      *uuid.UUID       `gorm:"column:tenant_id;type:uuid;index" json:"tenant_id"`
	Kind          NotificationKind `gorm:"column:kind;type:varchar(64);not null" json:"kind"`
	Payload       datatypes.JSON   `gorm:"column:payload;not null" json:"payload"`
	Status        OutboxStatus     `gorm:"column:status;type:varchar(16);not null;index:idx_outbox_due,priority:1" json:"status"`
	Attempts      int              `gorm:"column:attempts;not null" json:"attempts"`
	LastError     *string          `gorm:"column:last_error" json:"last_error,omitempty"`
	NextAttemptAt time.Time        `gorm:"column:next_attempt_at;not null;index:idx_outbox_due,priority:2" json:"next_attempt_at"`
	LockedUntil   *time.Time       `gorm:"column:locked_until" json:"-"`
	SentAt        *time.Time       `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "notification_outbox"
}

func NewOutboxMessage(tenantID *uuid.UUID, kind NotificationKind, payload any, now time.Time) (*OutboxMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return &OutboxMessage{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Kind:          kind,
		Payload:       datatypes.JSON(raw),
		Status:        OutboxPending,
		NextAttemptAt: now.UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (m *OutboxMessage) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Kind, err)
	}
	return nil
}
