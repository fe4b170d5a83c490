// Package mailer renders and delivers notification emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Message is one email to deliver. Data feeds the template.
type Message struct {
	To       string            `json:"to"`
	ReplyTo  string            `json:"replyTo,omitempty"`
	Subject  string            `json:"subject"`
	Template Template          `json:"template"`
	Data     map[string]string `json:"data"`
}

// Validate checks the fields every sender needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("email recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	if m.Template == "" {
		return errors.New("email template is required")
	}
	return nil
}

// Sender delivers a message, either directly or by queueing it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendSender creates a ResendSender. from is the verified sender identity.
func NewResendSender(apiKey, from string, logger zerolog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// Send renders the message template and calls the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    body,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info().
		Str("template", string(msg.Template)).
		Str("to", msg.To).
		Str("id", sent.Id).
		Msg("email sent")
	return nil
}

// LogSender renders the message and only logs it. Used when no API key is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("template", string(msg.Template)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("bytes", len(body)).
		Msg("email not sent: delivery disabled")
	return nil
}
