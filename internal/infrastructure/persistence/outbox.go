package persistence

import (
	"context"
	"time"

	"easyshifthq-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type outboxRepo struct {
	db *gorm.DB
}

func (r *outboxRepo) Enqueue(ctx context.Context, m *domain.OutboxMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

const dueCondition = "((status = ? AND next_attempt_at <= ?) OR (status = ? AND locked_until < ?))"

// ClaimDue selects due messages (plus processing ones whose lease lapsed)
// and leases each with a guarded update; rows another worker claimed first
// are skipped.
func (r *outboxRepo) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.OutboxMessage, error) {
	now = now.UTC()
	db := r.db.WithContext(ctx)
	var due []domain.OutboxMessage
	err := db.Where(dueCondition, domain.OutboxPending, now, domain.OutboxProcessing, now).
		Order("next_attempt_at").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	until := now.Add(lease)
	claimed := make([]domain.OutboxMessage, 0, len(due))
	for _, m := range due {
		res := db.Model(&domain.OutboxMessage{}).
			Where("id = ?", m.ID).
			Where(dueCondition, domain.OutboxPending, now, domain.OutboxProcessing, now).
			Updates(map[string]any{"status": domain.OutboxProcessing, "locked_until": until})
		if res.Error != nil {
			return claimed, res.Error
		}
		if res.RowsAffected == 1 {
			m.Status = domain.OutboxProcessing
			m.LockedUntil = &until
			claimed = append(claimed, m)
		}
	}
	return claimed, nil
}

func (r *outboxRepo) MarkSent(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]any{"status": domain.OutboxSent, "sent_at": now.UTC(), "locked_until": nil}).Error
}

func (r *outboxRepo) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, next time.Time, lastErr string) error {
	return r.db.WithContext(ctx).Model(&domain.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":          domain.OutboxPending,
			"attempts":        attempts,
			"next_attempt_at": next.UTC(),
			"last_error":      lastErr,
			"locked_until":    nil,
		}).Error
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error {
	return r.db.WithContext(ctx).Model(&domain.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":       domain.OutboxFailed,
			"attempts":     attempts,
			"last_error":   lastErr,
			"locked_until": nil,
		}).Error
}

func (r *outboxRepo) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("status = ? AND sent_at < ?", domain.OutboxSent, before.UTC()).Delete(&domain.OutboxMessage{})
	return res.RowsAffected, res.Error
}

func (r *outboxRepo) CountBacklog(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.OutboxMessage{}).
		Where("status IN ?", []domain.OutboxStatus{domain.OutboxPending, domain.OutboxProcessing}).
		Count(&count).Error
	return count, err
}
