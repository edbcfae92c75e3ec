// Package transport defines the request/response DTOs for the reminders module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus represents the lifecycle state of a reminder
type ReminderStatus string

const (
	ReminderStatusScheduled ReminderStatus = "scheduled"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// UpdateReminderStatusRequest changes a reminder's status
type UpdateReminderStatusRequest struct {
	Status ReminderStatus `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

// ReminderResponse is the API view of one reminder
type ReminderResponse struct {
	ID            uuid.UUID      `json:"id"`
	OfferID       uuid.UUID      `json:"offerId"`
	ServiceName   string         `json:"serviceName"`
	ScheduledDate time.Time      `json:"scheduledDate"`
	MonthsAfter   int            `json:"monthsAfter"`
	IsPaid        bool           `json:"isPaid"`
	ServiceType   string         `json:"serviceType"`
	Status        ReminderStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ReminderListResponse is a list of reminders
type ReminderListResponse struct {
	Items []ReminderResponse `json:"items"`
	Total int                `json:"total"`
}

// DeleteBatchResponse reports how many reminders a batch delete removed
type DeleteBatchResponse struct {
	Deleted int64 `json:"deleted"`
}
