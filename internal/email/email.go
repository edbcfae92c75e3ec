// Package email delivers staff notifications over SMTP: the daily digest of
// reminders becoming due and offer completion notices. Everything here is
// best-effort; a failed send never blocks a domain operation.
package email

import (
	"context"
	"time"

	"washdesk_backend/platform/config"
)

// DigestItem is one reminder line in the due-reminder digest.
type DigestItem struct {
	ServiceName   string
	ServiceType   string
	ScheduledDate time.Time
	IsPaid        bool
}

type Sender interface {
	SendReminderDigestEmail(ctx context.Context, toEmail string, from, to time.Time, items []DigestItem) error
	SendOfferCompletedEmail(ctx context.Context, toEmail, offerNumber, customerName string, reminderCount int) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendReminderDigestEmail(ctx context.Context, toEmail string, from, to time.Time, items []DigestItem) error {
	return nil
}

func (NoopSender) SendOfferCompletedEmail(ctx context.Context, toEmail, offerNumber, customerName string, reminderCount int) error {
	return nil
}

// NewSender returns the configured sender, or a noop when email is disabled.
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
