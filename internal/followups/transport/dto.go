// Package transport defines the request/response DTOs for the followups module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a follow-up task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Due classification for the work queue; derived at read time, never stored.
const (
	DueOverdue  = "overdue"
	DueToday    = "due_today"
	DueUpcoming = "upcoming"
)

// CreateEventRequest creates a follow-up event for a customer × service.
// ProductID, when given, pulls the recurrence interval from the catalog.
type CreateEventRequest struct {
	CustomerID       *uuid.UUID `json:"customerId"`
	CustomerName     string     `json:"customerName" validate:"required,max=200"`
	CustomerPhone    string     `json:"customerPhone" validate:"omitempty,max=30"`
	ServiceType      string     `json:"serviceType" validate:"required,max=100"`
	IntervalMonths   *int       `json:"intervalMonths" validate:"omitempty,gte=1,lte=120"`
	ProductID        *uuid.UUID `json:"productId"`
	NextReminderDate time.Time  `json:"nextReminderDate" validate:"required"`
}

// CreateTaskRequest materializes a task for an event
type CreateTaskRequest struct {
	EventID uuid.UUID  `json:"eventId" validate:"required"`
	DueDate *time.Time `json:"dueDate"`
	Notes   string     `json:"notes" validate:"omitempty,max=2000"`
}

// CompleteTaskRequest closes a task. A nil Notes keeps the existing notes.
type CompleteTaskRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// EventResponse is the API view of a follow-up event
type EventResponse struct {
	ID               uuid.UUID  `json:"id"`
	CustomerID       *uuid.UUID `json:"customerId,omitempty"`
	CustomerName     string     `json:"customerName"`
	CustomerPhone    *string    `json:"customerPhone,omitempty"`
	ServiceType      string     `json:"serviceType"`
	IntervalMonths   *int       `json:"intervalMonths,omitempty"`
	NextReminderDate time.Time  `json:"nextReminderDate"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// EventListResponse is a list of follow-up events
type EventListResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// TaskResponse is the API view of a follow-up task. Due is the derived
// work-queue classification (overdue / due_today / upcoming) for pending
// tasks and empty for completed ones.
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"eventId"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	DueDate       time.Time  `json:"dueDate"`
	Status        TaskStatus `json:"status"`
	Due           string     `json:"due,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// TaskListResponse is the work queue
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Total int            `json:"total"`
}

// CompleteTaskResponse reports the completion outcome. Warning carries a
// non-fatal reschedule failure; the task is completed regardless.
type CompleteTaskResponse struct {
	Task             TaskResponse `json:"task"`
	NextReminderDate *time.Time   `json:"nextReminderDate,omitempty"`
	Warning          *string      `json:"warning,omitempty"`
}
