package email

import (
	"context"

	"washdesk_backend/internal/events"
	"washdesk_backend/platform/config"
	platformevents "washdesk_backend/platform/events"
	"washdesk_backend/platform/logger"
)

// Notifier emails staff when an offer completes. Subscribed on the in-memory
// bus; failures are logged and dropped.
type Notifier struct {
	sender     Sender
	recipients []string
	log        *logger.Logger
}

func NewNotifier(sender Sender, cfg config.EmailConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:     sender,
		recipients: cfg.GetDigestRecipients(),
		log:        log,
	}
}

// RegisterHandlers subscribes the notifier to the domain events it reacts to.
func (n *Notifier) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.EventOfferCompleted, platformevents.HandlerFunc(n.handleOfferCompleted))
}

func (n *Notifier) handleOfferCompleted(ctx context.Context, event platformevents.Event) error {
	completed, ok := event.(events.OfferCompleted)
	if !ok {
		return nil
	}

	for _, recipient := range n.recipients {
		if err := n.sender.SendOfferCompletedEmail(ctx, recipient, completed.OfferNumber, completed.CustomerName, completed.ReminderCount); err != nil {
			n.log.Warn("offer completed email failed", "offer_id", completed.OfferID, "recipient", recipient, "error", err)
		}
	}
	return nil
}
