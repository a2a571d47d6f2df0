package emails

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, html string) error
}

// LogSender logs messages instead of delivering them. Used when no mail
// transport is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, toEmail, subject, html string) error {
	log.Info().Str("to", toEmail).Str("subject", subject).Int("bytes", len(html)).Msg("email not sent: no mail transport configured")
	return nil
}
