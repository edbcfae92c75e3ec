package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"washdesk_backend/internal/followups/repository"
	"washdesk_backend/internal/followups/transport"
	"washdesk_backend/platform/apperr"
	"washdesk_backend/platform/events"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore implements Store in memory with injectable failures
type fakeStore struct {
	events map[uuid.UUID]*repository.Event
	tasks  map[uuid.UUID]*repository.Task

	rescheduleErr error
	rescheduled   []time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[uuid.UUID]*repository.Event),
		tasks:  make(map[uuid.UUID]*repository.Task),
	}
}

func (f *fakeStore) CreateEvent(_ context.Context, e *repository.Event) error {
	f.events[e.ID] = e
	return nil
}

func (f *fakeStore) GetEventByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (*repository.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFound("follow-up event not found")
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) ListEvents(_ context.Context, _ uuid.UUID) ([]repository.Event, error) {
	var out []repository.Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStore) UpdateNextReminderDate(_ context.Context, id uuid.UUID, _ uuid.UUID, next time.Time) error {
	if f.rescheduleErr != nil {
		return f.rescheduleErr
	}
	e, ok := f.events[id]
	if !ok {
		return apperr.NotFound("follow-up event not found")
	}
	e.NextReminderDate = next
	f.rescheduled = append(f.rescheduled, next)
	return nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	delete(f.events, id)
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, t *repository.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) GetTaskByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (*repository.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperr.NotFound("follow-up task not found")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) ListPendingTasks(_ context.Context, _ uuid.UUID) ([]repository.Task, error) {
	var out []repository.Task
	for _, t := range f.tasks {
		if t.Status == "pending" {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) HasPendingTask(_ context.Context, eventID uuid.UUID, _ uuid.UUID) (bool, error) {
	for _, t := range f.tasks {
		if t.EventID == eventID && t.Status == "pending" {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CompleteTask(_ context.Context, id uuid.UUID, _ uuid.UUID, completedAt time.Time, notes *string) error {
	t, ok := f.tasks[id]
	if !ok || t.Status != "pending" {
		return apperr.Conflict("task already completed")
	}
	t.Status = "completed"
	t.CompletedAt = &completedAt
	if notes != nil {
		t.Notes = notes
	}
	return nil
}

func newTestService(store *fakeStore) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(store, nil, bus, log)
}

func seedTaskWithEvent(store *fakeStore, intervalMonths *int, notes *string) (*repository.Task, *repository.Event) {
	event := &repository.Event{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		CustomerName:     "Anna Kowalska",
		ServiceType:      "coating",
		IntervalMonths:   intervalMonths,
		NextReminderDate: time.Now().AddDate(0, 0, -1),
	}
	store.events[event.ID] = event

	task := &repository.Task{
		ID:           uuid.New(),
		TenantID:     event.TenantID,
		EventID:      event.ID,
		CustomerName: event.CustomerName,
		DueDate:      event.NextReminderDate,
		Status:       "pending",
		Notes:        notes,
	}
	store.tasks[task.ID] = task
	return task, event
}

func TestCompleteTask_ReschedulesParentEventByCalendarMonths(t *testing.T) {
	store := newFakeStore()
	interval := 6
	task, event := seedTaskWithEvent(store, &interval, nil)
	svc := newTestService(store)

	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Task.Status != transport.TaskStatusCompleted {
		t.Fatalf("expected completed task, got %s", resp.Task.Status)
	}
	// Calendar-month addition, not the 30.44-day approximation:
	// Aug 31 + 6 months normalizes to Mar 2/3 via AddDate semantics.
	want := fixed.AddDate(0, 6, 0)
	if resp.NextReminderDate == nil || !resp.NextReminderDate.Equal(want) {
		t.Fatalf("expected next reminder %v, got %v", want, resp.NextReminderDate)
	}
	if !store.events[event.ID].NextReminderDate.Equal(want) {
		t.Fatalf("event not rescheduled: %v", store.events[event.ID].NextReminderDate)
	}
	if resp.Warning != nil {
		t.Fatalf("unexpected warning: %s", *resp.Warning)
	}
}

func TestCompleteTask_TaskCompletesEvenWhenRescheduleFails(t *testing.T) {
	store := newFakeStore()
	interval := 3
	task, _ := seedTaskWithEvent(store, &interval, nil)
	store.rescheduleErr = errors.New("connection reset")
	svc := newTestService(store)

	resp, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil)
	if err != nil {
		t.Fatalf("reschedule failure must not fail the completion: %v", err)
	}
	if resp.Task.Status != transport.TaskStatusCompleted {
		t.Fatalf("expected completed task, got %s", resp.Task.Status)
	}
	if store.tasks[task.ID].Status != "completed" {
		t.Fatalf("task not persisted as completed: %s", store.tasks[task.ID].Status)
	}
	if resp.Warning == nil {
		t.Fatal("expected a warning for the failed reschedule")
	}
	if resp.NextReminderDate != nil {
		t.Fatalf("expected no next date on failed reschedule, got %v", resp.NextReminderDate)
	}
}

func TestCompleteTask_NilNotesPreservesExistingNotes(t *testing.T) {
	store := newFakeStore()
	existing := "called twice, prefers mornings"
	task, _ := seedTaskWithEvent(store, nil, &existing)
	svc := newTestService(store)

	resp, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Task.Notes == nil || *resp.Task.Notes != existing {
		t.Fatalf("expected notes preserved, got %v", resp.Task.Notes)
	}
	if store.tasks[task.ID].Notes == nil || *store.tasks[task.ID].Notes != existing {
		t.Fatal("persisted notes were cleared")
	}
}

func TestCompleteTask_SuppliedNotesOverwrite(t *testing.T) {
	store := newFakeStore()
	existing := "old note"
	task, _ := seedTaskWithEvent(store, nil, &existing)
	svc := newTestService(store)

	updated := "car picked up, next visit booked"
	resp, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, &updated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Task.Notes == nil || *resp.Task.Notes != updated {
		t.Fatalf("expected overwritten notes, got %v", resp.Task.Notes)
	}
}

func TestCompleteTask_SecondCompletionIsConflict(t *testing.T) {
	store := newFakeStore()
	task, _ := seedTaskWithEvent(store, nil, nil)
	svc := newTestService(store)

	if _, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	_, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on double completion, got %v", err)
	}
}

func TestCompleteTask_EventWithoutIntervalSkipsReschedule(t *testing.T) {
	store := newFakeStore()
	task, _ := seedTaskWithEvent(store, nil, nil)
	svc := newTestService(store)

	resp, err := svc.CompleteTask(context.Background(), task.ID, task.TenantID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.NextReminderDate != nil {
		t.Fatalf("expected no reschedule without interval, got %v", resp.NextReminderDate)
	}
	if len(store.rescheduled) != 0 {
		t.Fatalf("expected no reschedule writes, got %d", len(store.rescheduled))
	}
	if resp.Warning != nil {
		t.Fatalf("unexpected warning: %s", *resp.Warning)
	}
}

func TestClassifyDue(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		due  time.Time
		want string
	}{
		{time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC), transport.DueOverdue},
		{time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), transport.DueToday},
		{time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC), transport.DueToday},
		{time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), transport.DueUpcoming},
	}
	for _, tc := range cases {
		if got := classifyDue(tc.due, now); got != tc.want {
			t.Fatalf("classifyDue(%v) = %s, want %s", tc.due, got, tc.want)
		}
	}
}
