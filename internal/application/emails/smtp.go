package emails

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	if from == "" {
		from = defaultFrom
	}
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, username, password),
	}
}

// Message builds the MIME message Send would deliver.
func (s *SMTPSender) Message(toEmail, subject, html string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, brandName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Reply-To", supportEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return m
}

func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.dialer == nil {
		s.dialer = gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	}
	if err := s.dialer.DialAndSend(s.Message(toEmail, subject, html)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", toEmail, err)
	}
	return nil
}
