// Package email delivers outbound mail over the configured SMTP server.
package email

import (
	"context"

	"novahub_backend/platform/config"
)

// Sender delivers the application's outbound emails.
type Sender interface {
	// SendPitch sends a generated outreach email to a lead.
	SendPitch(ctx context.Context, toEmail, subject, body string) error
	// SendWelcomeEmail greets a newly registered user.
	SendWelcomeEmail(ctx context.Context, toEmail, nombre string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendPitch(ctx context.Context, toEmail, subject, body string) error {
	return nil
}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, nombre string) error {
	return nil
}

// NewSender returns an SMTP-backed sender, or a no-op when EMAIL_ENABLED
// is false.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
