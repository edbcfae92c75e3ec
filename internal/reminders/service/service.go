package service

import (
	"context"
	"time"

	"washdesk_backend/internal/events"
	offersrepo "washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/reminders/repository"
	"washdesk_backend/internal/reminders/transport"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// SelectionSource provides the selected item/product/template join the
// planner consumes. Implemented by the offers repository.
type SelectionSource interface {
	GetSelectedItemsForPlanning(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) ([]offersrepo.PlanningRow, error)
}

// Service provides business logic for offer reminders
type Service struct {
	repo      *repository.Repository
	selection SelectionSource
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new reminders service
func New(repo *repository.Repository, selection SelectionSource, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, selection: selection, bus: bus, log: log}
}

// PlanForOffer materializes the reminder schedule for a completed offer and
// returns the number of reminders created. Called best-effort from offer
// completion and again, idempotently enough, from the outbox retry path: a
// retry after a partial failure re-inserts the whole batch, so the batch
// insert is transactional.
func (s *Service) PlanForOffer(ctx context.Context, tenantID, offerID uuid.UUID, completedAt time.Time) (int, error) {
	rows, err := s.selection.GetSelectedItemsForPlanning(ctx, offerID, tenantID)
	if err != nil {
		return 0, err
	}

	planned := PlanSchedule(rows, completedAt)
	if len(planned) == 0 {
		return 0, nil
	}

	now := time.Now()
	reminders := make([]repository.Reminder, len(planned))
	for i, p := range planned {
		reminders[i] = repository.Reminder{
			ID:            uuid.New(),
			TenantID:      tenantID,
			OfferID:       offerID,
			ServiceName:   p.ServiceName,
			ScheduledDate: p.ScheduledDate,
			MonthsAfter:   p.MonthsAfter,
			IsPaid:        p.IsPaid,
			ServiceType:   p.ServiceType,
			Status:        string(transport.ReminderStatusScheduled),
			CreatedAt:     now,
		}
	}

	if err := s.repo.InsertBatch(ctx, reminders); err != nil {
		return 0, err
	}

	s.log.Info("reminder batch planned", "offer_id", offerID, "count", len(reminders))
	s.bus.Publish(ctx, events.ReminderBatchPlanned{
		BaseEvent: events.NewBaseEvent(),
		OfferID:   offerID,
		TenantID:  tenantID,
		Count:     len(reminders),
	})
	return len(reminders), nil
}

// ListByOffer retrieves all reminders of an offer
func (s *Service) ListByOffer(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) (*transport.ReminderListResponse, error) {
	reminders, err := s.repo.ListByOffer(ctx, offerID, tenantID)
	if err != nil {
		return nil, err
	}
	return buildListResponse(reminders), nil
}

// ListDueBetween retrieves scheduled reminders due inside a window
func (s *Service) ListDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]transport.ReminderResponse, error) {
	reminders, err := s.repo.ListDueBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return buildListResponse(reminders).Items, nil
}

// UpdateStatus marks a reminder completed or cancelled
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status transport.ReminderStatus) (*transport.ReminderResponse, error) {
	if err := s.repo.UpdateStatus(ctx, id, tenantID, string(status)); err != nil {
		return nil, err
	}
	reminder, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	resp := buildResponse(reminder)
	return &resp, nil
}

// Delete removes one reminder; the parent offer stays completed
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.repo.Delete(ctx, id, tenantID)
}

// DeleteByOffer removes the whole batch of an offer and returns the count
func (s *Service) DeleteByOffer(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) (int64, error) {
	return s.repo.DeleteByOffer(ctx, offerID, tenantID)
}

func buildResponse(r *repository.Reminder) transport.ReminderResponse {
	return transport.ReminderResponse{
		ID:            r.ID,
		OfferID:       r.OfferID,
		ServiceName:   r.ServiceName,
		ScheduledDate: r.ScheduledDate,
		MonthsAfter:   r.MonthsAfter,
		IsPaid:        r.IsPaid,
		ServiceType:   r.ServiceType,
		Status:        transport.ReminderStatus(r.Status),
		CreatedAt:     r.CreatedAt,
	}
}

func buildListResponse(reminders []repository.Reminder) *transport.ReminderListResponse {
	items := make([]transport.ReminderResponse, len(reminders))
	for i := range reminders {
		items[i] = buildResponse(&reminders[i])
	}
	return &transport.ReminderListResponse{Items: items, Total: len(items)}
}
