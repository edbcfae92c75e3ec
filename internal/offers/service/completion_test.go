package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"washdesk_backend/internal/events"
	"washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/offers/transport"
	"washdesk_backend/internal/scheduler/tasks"
	"washdesk_backend/platform/apperr"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeOfferStore implements Store in memory; only the completion path matters
type fakeOfferStore struct {
	offers map[uuid.UUID]*repository.Offer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: make(map[uuid.UUID]*repository.Offer)}
}

func (f *fakeOfferStore) NextOfferNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return "OFR-2026-0001", nil
}

func (f *fakeOfferStore) CreateWithOptions(_ context.Context, o *repository.Offer, _ []repository.OptionWithItems) error {
	f.offers[o.ID] = o
	return nil
}

func (f *fakeOfferStore) GetByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (*repository.Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return nil, apperr.NotFound("offer not found")
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOfferStore) GetOptionsWithItems(_ context.Context, _ uuid.UUID, _ uuid.UUID) ([]repository.OptionWithItems, error) {
	return nil, nil
}

func (f *fakeOfferStore) UpdateWithOptions(_ context.Context, o *repository.Offer, _ []repository.OptionWithItems, _ bool) error {
	f.offers[o.ID] = o
	return nil
}

func (f *fakeOfferStore) List(_ context.Context, _ repository.ListParams) (*repository.ListResult, error) {
	return &repository.ListResult{}, nil
}

func (f *fakeOfferStore) UpdateApprovedTotals(_ context.Context, _ uuid.UUID, _ uuid.UUID, _, _ int64, _ time.Time, _ uuid.UUID) error {
	return nil
}

func (f *fakeOfferStore) SetSelection(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ []byte, _ []uuid.UUID, _, _ int64) error {
	return nil
}

func (f *fakeOfferStore) MarkCompleted(_ context.Context, id uuid.UUID, _ uuid.UUID, completedAt time.Time, completedBy uuid.UUID) error {
	o, ok := f.offers[id]
	if !ok || o.Status == "completed" {
		return apperr.Conflict("offer already completed")
	}
	o.Status = "completed"
	o.CompletedAt = &completedAt
	o.CompletedBy = &completedBy
	return nil
}

func (f *fakeOfferStore) Delete(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	delete(f.offers, id)
	return nil
}

type fakePlanner struct {
	count int
	err   error
	calls int
}

func (f *fakePlanner) PlanForOffer(_ context.Context, _, _ uuid.UUID, _ time.Time) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

type fakeOutbox struct {
	kinds []string
	err   error
}

func (f *fakeOutbox) Enqueue(_ context.Context, _ uuid.UUID, kind string, _ any) error {
	if f.err != nil {
		return f.err
	}
	f.kinds = append(f.kinds, kind)
	return nil
}

func newCompletionService(store *fakeOfferStore, planner *fakePlanner, outbox *fakeOutbox) *Service {
	log := logger.New("development")
	svc := New(store, events.NewInMemoryBus(log), log, 23)
	svc.SetReminderPlanner(planner)
	svc.SetOutboxWriter(outbox)
	return svc
}

func seedDraftOffer(store *fakeOfferStore) *repository.Offer {
	offer := &repository.Offer{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		OfferNumber:  "OFR-2026-0042",
		CustomerName: "Jan Nowak",
		VATRate:      23,
		Status:       "draft",
	}
	store.offers[offer.ID] = offer
	return offer
}

func TestComplete_PlansRemindersAndReportsCount(t *testing.T) {
	store := newFakeOfferStore()
	offer := seedDraftOffer(store)
	planner := &fakePlanner{count: 3}
	outbox := &fakeOutbox{}
	svc := newCompletionService(store, planner, outbox)

	resp, err := svc.Complete(context.Background(), offer.ID, offer.TenantID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != transport.OfferStatusCompleted {
		t.Fatalf("expected completed status, got %s", resp.Status)
	}
	if resp.RemindersCreated != 3 {
		t.Fatalf("expected 3 reminders created, got %d", resp.RemindersCreated)
	}
	if resp.Warning != nil {
		t.Fatalf("unexpected warning: %s", *resp.Warning)
	}
	if planner.calls != 1 {
		t.Fatalf("expected one planner call, got %d", planner.calls)
	}
	if len(outbox.kinds) != 0 {
		t.Fatalf("expected no outbox records on success, got %v", outbox.kinds)
	}
}

func TestComplete_OfferCompletesEvenWhenPlanningFails(t *testing.T) {
	store := newFakeOfferStore()
	offer := seedDraftOffer(store)
	planner := &fakePlanner{err: errors.New("connection reset")}
	outbox := &fakeOutbox{}
	svc := newCompletionService(store, planner, outbox)

	resp, err := svc.Complete(context.Background(), offer.ID, offer.TenantID, uuid.New())
	if err != nil {
		t.Fatalf("planner failure must not fail the completion: %v", err)
	}
	if store.offers[offer.ID].Status != "completed" {
		t.Fatalf("offer not persisted as completed: %s", store.offers[offer.ID].Status)
	}
	if resp.Warning == nil {
		t.Fatal("expected a warning for the failed planning")
	}
	if resp.RemindersCreated != 0 {
		t.Fatalf("expected zero reminders on failed planning, got %d", resp.RemindersCreated)
	}
	if len(outbox.kinds) != 1 || outbox.kinds[0] != tasks.TypePlanReminders {
		t.Fatalf("expected one %s outbox record, got %v", tasks.TypePlanReminders, outbox.kinds)
	}
}

func TestComplete_OutboxFailureStillCompletes(t *testing.T) {
	store := newFakeOfferStore()
	offer := seedDraftOffer(store)
	planner := &fakePlanner{err: errors.New("connection reset")}
	outbox := &fakeOutbox{err: errors.New("outbox down")}
	svc := newCompletionService(store, planner, outbox)

	resp, err := svc.Complete(context.Background(), offer.ID, offer.TenantID, uuid.New())
	if err != nil {
		t.Fatalf("outbox failure must not fail the completion: %v", err)
	}
	if store.offers[offer.ID].Status != "completed" {
		t.Fatalf("offer not persisted as completed: %s", store.offers[offer.ID].Status)
	}
	if resp.Warning == nil {
		t.Fatal("expected a warning for the failed planning")
	}
}

func TestComplete_SecondCompletionIsConflict(t *testing.T) {
	store := newFakeOfferStore()
	offer := seedDraftOffer(store)
	svc := newCompletionService(store, &fakePlanner{count: 1}, &fakeOutbox{})

	if _, err := svc.Complete(context.Background(), offer.ID, offer.TenantID, uuid.New()); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	_, err := svc.Complete(context.Background(), offer.ID, offer.TenantID, uuid.New())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on double completion, got %v", err)
	}
}
