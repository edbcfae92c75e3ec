package service

import (
	"context"
	"time"

	"washdesk_backend/internal/events"
	"washdesk_backend/internal/offers/transport"
	"washdesk_backend/internal/scheduler/tasks"

	"github.com/google/uuid"
)

const warnReminderPlanningDeferred = "reminder planning failed and was scheduled for retry"

// Complete transitions an offer to completed and materializes its reminder
// schedule. The status change is the primary write: it commits first and a
// second completion attempt is rejected as a conflict. Reminder planning is a
// best-effort secondary — on failure the offer stays completed, the response
// carries a warning and an outbox record takes over the retry.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, actorID uuid.UUID) (*transport.CompleteOfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now()
	if err := s.repo.MarkCompleted(ctx, id, tenantID, completedAt, actorID); err != nil {
		return nil, err
	}

	resp := &transport.CompleteOfferResponse{
		ID:          id,
		Status:      transport.OfferStatusCompleted,
		CompletedAt: completedAt,
	}

	if s.planner != nil {
		count, planErr := s.planner.PlanForOffer(ctx, tenantID, id, completedAt)
		if planErr != nil {
			s.log.SecondaryWriteFailed("reminders.plan", id.String(), planErr)
			s.deferReminderPlanning(ctx, tenantID, id, completedAt)
			warning := warnReminderPlanningDeferred
			resp.Warning = &warning
		} else {
			resp.RemindersCreated = count
		}
	}

	s.bus.Publish(ctx, events.OfferCompleted{
		BaseEvent:     events.NewBaseEvent(),
		OfferID:       id,
		TenantID:      tenantID,
		OfferNumber:   offer.OfferNumber,
		CustomerName:  offer.CustomerName,
		CustomerEmail: derefOrEmpty(offer.CustomerEmail),
		CompletedAt:   completedAt,
		CompletedBy:   actorID,
		ReminderCount: resp.RemindersCreated,
	})

	return resp, nil
}

// deferReminderPlanning drops an outbox record so the scheduler retries the
// batch. If even that fails there is nothing left to do but log.
func (s *Service) deferReminderPlanning(ctx context.Context, tenantID, offerID uuid.UUID, completedAt time.Time) {
	if s.outbox == nil {
		return
	}
	payload := tasks.PlanRemindersPayload{
		TenantID:    tenantID,
		OfferID:     offerID,
		CompletedAt: completedAt,
	}
	if err := s.outbox.Enqueue(ctx, tenantID, tasks.TypePlanReminders, payload); err != nil {
		s.log.Error("failed to enqueue reminder planning retry", "offer_id", offerID, "error", err)
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
