// Package tasks defines the background task types and their payloads.
// Kept free of asynq so domain services can reference task kinds without
// pulling in the queue machinery.
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outbox record kinds. The dispatcher ferries records of these kinds to the
// worker, which switches on the kind to pick the retry handler.
const (
	TypePlanReminders      = "reminders.plan"
	TypeRescheduleFollowUp = "followups.reschedule"
)

// Asynq task type names.
const (
	TypeOutboxDue      = "outbox.record.due"
	TypeFollowUpDue    = "followups.task.due"
	TypeReminderDigest = "reminders.digest"
)

// PlanRemindersPayload retries reminder materialization for a completed offer
type PlanRemindersPayload struct {
	TenantID    uuid.UUID `json:"tenantId"`
	OfferID     uuid.UUID `json:"offerId"`
	CompletedAt time.Time `json:"completedAt"`
}

// RescheduleFollowUpPayload retries pushing a follow-up event's next date forward
type RescheduleFollowUpPayload struct {
	TenantID    uuid.UUID `json:"tenantId"`
	EventID     uuid.UUID `json:"eventId"`
	CompletedAt time.Time `json:"completedAt"`
}

// FollowUpDuePayload materializes a pending task for a due follow-up event
type FollowUpDuePayload struct {
	TenantID uuid.UUID `json:"tenantId"`
	EventID  uuid.UUID `json:"eventId"`
}

// OutboxDuePayload points the worker at a claimed outbox record
type OutboxDuePayload struct {
	OutboxID uuid.UUID `json:"outboxId"`
	TenantID uuid.UUID `json:"tenantId"`
}

// ReminderDigestPayload asks for a due-reminder summary email per tenant
type ReminderDigestPayload struct {
	TenantID uuid.UUID `json:"tenantId"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Encode marshals a payload for enqueueing
func Encode(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode task payload: %w", err)
	}
	return data, nil
}

// Decode unmarshals a task payload into the given target
func Decode(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode task payload: %w", err)
	}
	return nil
}
