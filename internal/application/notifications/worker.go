package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/observability/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBatchSize   = 50
	DefaultMaxAttempts = 8
	DefaultLease       = 5 * time.Minute
	retryStep          = 30 * time.Second
)

// Worker drains the notification outbox.
type Worker struct {
	Outbox      domain.OutboxRepository
	Handler     Handler
	BatchSize   int
	MaxAttempts int
	Lease       time.Duration
	Retention   time.Duration
	Now         func() time.Time
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

// Backoff is the delay before retry number attempts (1-based).
func Backoff(attempts int) time.Duration {
	return time.Duration(attempts*attempts) * retryStep
}

// DispatchPending delivers one batch of due messages and returns how many
// were sent.
func (w *Worker) DispatchPending(ctx context.Context) (int, error) {
	batch, lease, maxAttempts := w.BatchSize, w.Lease, w.MaxAttempts
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if lease <= 0 {
		lease = DefaultLease
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	msgs, err := w.Outbox.ClaimDue(ctx, w.now(), lease, batch)
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}
	sent := 0
	for i := range msgs {
		m := &msgs[i]
		herr := w.Handler.Handle(ctx, m)
		metrics.ObserveNotification(string(m.Kind), herr)
		if herr == nil {
			if err := w.Outbox.MarkSent(ctx, m.ID, w.now()); err != nil {
				return sent, fmt.Errorf("mark sent: %w", err)
			}
			sent++
			continue
		}

		attempts := m.Attempts + 1
		logger := log.With().Str("outbox_id", m.ID.String()).Str("kind", string(m.Kind)).Int("attempts", attempts).Logger()
		if errors.Is(herr, ErrUndeliverable) || attempts >= maxAttempts {
			logger.Error().Err(herr).Msg("notification failed permanently")
			if err := w.Outbox.MarkFailed(ctx, m.ID, attempts, herr.Error()); err != nil {
				return sent, fmt.Errorf("mark failed: %w", err)
			}
			continue
		}
		next := w.now().Add(Backoff(attempts))
		logger.Warn().Err(herr).Time("next_attempt_at", next).Msg("notification delivery failed, retrying")
		if err := w.Outbox.MarkRetry(ctx, m.ID, attempts, next, herr.Error()); err != nil {
			return sent, fmt.Errorf("mark retry: %w", err)
		}
	}
	w.reportBacklog(ctx)
	return sent, nil
}

// PurgeSent deletes delivered messages older than the retention period.
func (w *Worker) PurgeSent(ctx context.Context) (int64, error) {
	if w.Retention <= 0 {
		return 0, nil
	}
	return w.Outbox.PurgeSent(ctx, w.now().Add(-w.Retention))
}

func (w *Worker) reportBacklog(ctx context.Context) {
	n, err := w.Outbox.CountBacklog(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("count outbox backlog")
		return
	}
	metrics.SetOutboxBacklog(n)
}

// Start schedules delivery every interval and a daily purge, and starts the
// scheduler. Callers stop it with Stop().
func (w *Worker) Start(interval time.Duration) (*cron.Cron, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("outbox interval must be positive, got %s", interval)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		n, err := w.DispatchPending(ctx)
		if err != nil {
			log.Error().Err(err).Msg("outbox dispatch failed")
			return
		}
		if n > 0 {
			log.Info().Int("sent", n).Msg("outbox dispatched")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule outbox dispatch: %w", err)
	}

	_, err = c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := w.PurgeSent(ctx)
		if err != nil {
			log.Error().Err(err).Msg("outbox purge failed")
			return
		}
		log.Info().Int64("purged", n).Msg("outbox purged")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule outbox purge: %w", err)
	}

	c.Start()
	log.Info().Dur("interval", interval).Msg("outbox worker started")
	return c, nil
}
