package email

import (
	"context"
	"errors"
	"time"

	reminderstransport "washdesk_backend/internal/reminders/transport"
	"washdesk_backend/platform/config"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// DueReminderLister is the slice of the reminders service the digest needs.
type DueReminderLister interface {
	ListDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]reminderstransport.ReminderResponse, error)
}

// DigestService mails the configured staff recipients the reminders becoming
// due inside a window. Driven by the scheduler's daily digest task.
type DigestService struct {
	reminders  DueReminderLister
	sender     Sender
	recipients []string
	log        *logger.Logger
}

func NewDigestService(reminders DueReminderLister, sender Sender, cfg config.EmailConfig, log *logger.Logger) *DigestService {
	return &DigestService{
		reminders:  reminders,
		sender:     sender,
		recipients: cfg.GetDigestRecipients(),
		log:        log,
	}
}

func (d *DigestService) SendDueReminderDigest(ctx context.Context, tenantID uuid.UUID, from, to time.Time) error {
	if len(d.recipients) == 0 {
		return nil
	}

	due, err := d.reminders.ListDueBetween(ctx, tenantID, from, to)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	items := make([]DigestItem, 0, len(due))
	for _, rem := range due {
		items = append(items, DigestItem{
			ServiceName:   rem.ServiceName,
			ServiceType:   rem.ServiceType,
			ScheduledDate: rem.ScheduledDate,
			IsPaid:        rem.IsPaid,
		})
	}

	var errs []error
	for _, recipient := range d.recipients {
		if err := d.sender.SendReminderDigestEmail(ctx, recipient, from, to, items); err != nil {
			d.log.Warn("digest email failed", "tenant_id", tenantID, "recipient", recipient, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
