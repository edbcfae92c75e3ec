package service

import (
	"context"
	"time"

	"washdesk_backend/internal/events"
	"washdesk_backend/internal/followups/transport"
	"washdesk_backend/internal/scheduler/tasks"
	"washdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

const warnRescheduleDeferred = "next reminder date could not be updated and was scheduled for retry"

// CompleteTask closes a pending task and pushes the parent event's next
// reminder date forward by its interval. The task completion is the primary
// write; the reschedule is a best-effort secondary — on failure the task
// stays completed, the response carries a warning and an outbox record takes
// over the retry.
//
// The reschedule uses calendar-month addition (AddDate), intentionally
// different from the reminder planner's 30.44-day approximation.
func (s *Service) CompleteTask(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, notes *string) (*transport.CompleteTaskResponse, error) {
	task, err := s.store.GetTaskByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if task.Status == string(transport.TaskStatusCompleted) {
		return nil, apperr.Conflict("task already completed")
	}

	completedAt := s.now()
	if err := s.store.CompleteTask(ctx, id, tenantID, completedAt, notes); err != nil {
		return nil, err
	}

	task.Status = string(transport.TaskStatusCompleted)
	task.CompletedAt = &completedAt
	if notes != nil {
		task.Notes = notes
	}

	resp := &transport.CompleteTaskResponse{Task: buildTaskResponse(task, completedAt)}
	rescheduleFailed := false

	event, err := s.store.GetEventByID(ctx, task.EventID, tenantID)
	switch {
	case err != nil:
		rescheduleFailed = true
		s.log.SecondaryWriteFailed("followups.reschedule", task.EventID.String(), err)
		s.deferReschedule(ctx, tenantID, task.EventID, completedAt)
	case event.IntervalMonths != nil:
		next := completedAt.AddDate(0, *event.IntervalMonths, 0)
		if err := s.store.UpdateNextReminderDate(ctx, event.ID, tenantID, next); err != nil {
			rescheduleFailed = true
			s.log.SecondaryWriteFailed("followups.reschedule", event.ID.String(), err)
			s.deferReschedule(ctx, tenantID, event.ID, completedAt)
		} else {
			resp.NextReminderDate = &next
		}
	}

	if rescheduleFailed {
		warning := warnRescheduleDeferred
		resp.Warning = &warning
	}

	s.bus.Publish(ctx, events.FollowUpTaskCompleted{
		BaseEvent:        events.NewBaseEvent(),
		TaskID:           task.ID,
		EventID:          task.EventID,
		TenantID:         tenantID,
		CustomerName:     task.CustomerName,
		NextReminderDate: resp.NextReminderDate,
		RescheduleFailed: rescheduleFailed,
	})

	return resp, nil
}

// RescheduleEvent recomputes an event's next reminder date from a completion
// time. Used by the outbox retry path; a no-op for events without an interval.
func (s *Service) RescheduleEvent(ctx context.Context, tenantID uuid.UUID, eventID uuid.UUID, payload tasks.RescheduleFollowUpPayload) error {
	event, err := s.store.GetEventByID(ctx, eventID, tenantID)
	if err != nil {
		return err
	}
	if event.IntervalMonths == nil {
		return nil
	}
	next := payload.CompletedAt.AddDate(0, *event.IntervalMonths, 0)
	return s.store.UpdateNextReminderDate(ctx, eventID, tenantID, next)
}

// deferReschedule drops an outbox record so the scheduler retries the
// reschedule. If even that fails there is nothing left to do but log.
func (s *Service) deferReschedule(ctx context.Context, tenantID, eventID uuid.UUID, completedAt time.Time) {
	if s.outbox == nil {
		return
	}
	payload := tasks.RescheduleFollowUpPayload{
		TenantID:    tenantID,
		EventID:     eventID,
		CompletedAt: completedAt,
	}
	if err := s.outbox.Enqueue(ctx, tenantID, tasks.TypeRescheduleFollowUp, payload); err != nil {
		s.log.Error("failed to enqueue reschedule retry", "event_id", eventID, "error", err)
	}
}
