// Package events defines the domain events exchanged between modules.
package events

import (
	"time"

	platformevents "washdesk_backend/platform/events"

	"github.com/google/uuid"
)

// BaseEvent re-exports the platform base event.
type BaseEvent = platformevents.BaseEvent

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// Event names.
const (
	EventOfferCompleted        = "offers.completed"
	EventReminderBatchPlanned  = "reminders.batch_planned"
	EventFollowUpTaskCompleted = "followups.task_completed"
)

// OfferCompleted fires when an offer transitions to completed.
// The reminder batch may or may not have been created yet; ReminderCount
// is zero when the secondary write failed and was deferred to the outbox.
type OfferCompleted struct {
	BaseEvent
	OfferID       uuid.UUID
	TenantID      uuid.UUID
	OfferNumber   string
	CustomerName  string
	CustomerEmail string
	CompletedAt   time.Time
	CompletedBy   uuid.UUID
	ReminderCount int
}

// EventName identifies the event type.
func (OfferCompleted) EventName() string { return EventOfferCompleted }

// ReminderBatchPlanned fires after a reminder batch has been persisted
// for a completed offer.
type ReminderBatchPlanned struct {
	BaseEvent
	OfferID  uuid.UUID
	TenantID uuid.UUID
	Count    int
}

// EventName identifies the event type.
func (ReminderBatchPlanned) EventName() string { return EventReminderBatchPlanned }

// FollowUpTaskCompleted fires when a staff member closes a follow-up task.
// RescheduleFailed is true when the parent event's next date could not be
// pushed forward; the retry then runs through the outbox.
type FollowUpTaskCompleted struct {
	BaseEvent
	TaskID           uuid.UUID
	EventID          uuid.UUID
	TenantID         uuid.UUID
	CustomerName     string
	NextReminderDate *time.Time
	RescheduleFailed bool
}

// EventName identifies the event type.
func (FollowUpTaskCompleted) EventName() string { return EventFollowUpTaskCompleted }
