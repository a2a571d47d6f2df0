package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// brevoMessage is the transactional email body of the Brevo v3 API.
type brevoMessage struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	ReplyTo     *brevoContact  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BrevoClient delivers mail through Brevo (formerly Sendinblue).
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func NewBrevoClient(apiKey, mailFrom string) *BrevoClient {
	return &BrevoClient{
		APIKey:   apiKey,
		MailFrom: mailFrom,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *BrevoClient) Send(ctx context.Context, toEmail, subject, html string) error {
	from := c.MailFrom
	if from == "" {
		from = defaultFrom
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = brevoEndpoint
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(brevoMessage{
		Sender:      brevoContact{Email: from, Name: brandName},
		To:          []brevoContact{{Email: toEmail}},
		ReplyTo:     &brevoContact{Email: supportEmail, Name: brandName + " Support"},
		Subject:     subject,
		HTMLContent: html,
		Tags:        []string{"easyshifthq"},
	})
	if err != nil {
		return fmt.Errorf("encode brevo message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var be brevoError
		if json.Unmarshal(body, &be) == nil && be.Message != "" {
			return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, be.Message)
		}
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}

	var sent struct {
		MessageID string `json:"messageId"`
	}
	_ = json.Unmarshal(body, &sent)
	log.Debug().Str("to", toEmail).Str("message_id", strings.Trim(sent.MessageID, "<>")).Msg("brevo email accepted")
	return nil
}
