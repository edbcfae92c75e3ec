package service

import (
	"context"
	"time"

	"washdesk_backend/internal/events"
	"washdesk_backend/internal/followups/repository"
	"washdesk_backend/internal/followups/transport"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the followups service depends on.
// Implemented by *repository.Repository; faked in tests.
type Store interface {
	CreateEvent(ctx context.Context, e *repository.Event) error
	GetEventByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*repository.Event, error)
	ListEvents(ctx context.Context, tenantID uuid.UUID) ([]repository.Event, error)
	UpdateNextReminderDate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, next time.Time) error
	DeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateTask(ctx context.Context, t *repository.Task) error
	GetTaskByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*repository.Task, error)
	ListPendingTasks(ctx context.Context, tenantID uuid.UUID) ([]repository.Task, error)
	HasPendingTask(ctx context.Context, eventID uuid.UUID, tenantID uuid.UUID) (bool, error)
	CompleteTask(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, completedAt time.Time, notes *string) error
}

// IntervalSource resolves a product's default recurrence interval.
// Implemented by the catalog service.
type IntervalSource interface {
	GetProductInterval(ctx context.Context, productID uuid.UUID, tenantID uuid.UUID) (*int, error)
}

// OutboxWriter records a failed best-effort side effect for structural retry.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tenantID uuid.UUID, kind string, payload any) error
}

// Service provides business logic for follow-up events and tasks
type Service struct {
	store     Store
	intervals IntervalSource // optional
	outbox    OutboxWriter   // optional
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new followups service
func New(store Store, intervals IntervalSource, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, intervals: intervals, bus: bus, log: log, now: time.Now}
}

// SetOutboxWriter injects the side-effect outbox writer
func (s *Service) SetOutboxWriter(w OutboxWriter) {
	s.outbox = w
}

// CreateEvent creates a recurring follow-up anchor. When a product id is
// given and no explicit interval, the catalog's default interval applies.
func (s *Service) CreateEvent(ctx context.Context, tenantID uuid.UUID, req transport.CreateEventRequest) (*transport.EventResponse, error) {
	interval := req.IntervalMonths
	if interval == nil && req.ProductID != nil && s.intervals != nil {
		fromCatalog, err := s.intervals.GetProductInterval(ctx, *req.ProductID, tenantID)
		if err != nil {
			return nil, err
		}
		interval = fromCatalog
	}

	now := s.now()
	event := repository.Event{
		ID:               uuid.New(),
		TenantID:         tenantID,
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		CustomerPhone:    nilIfEmpty(req.CustomerPhone),
		ServiceType:      req.ServiceType,
		IntervalMonths:   interval,
		NextReminderDate: req.NextReminderDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}
	return buildEventResponse(&event), nil
}

// GetEvent retrieves one follow-up event
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transport.EventResponse, error) {
	event, err := s.store.GetEventByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return buildEventResponse(event), nil
}

// ListEvents retrieves all follow-up events of a tenant
func (s *Service) ListEvents(ctx context.Context, tenantID uuid.UUID) (*transport.EventListResponse, error) {
	eventList, err := s.store.ListEvents(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]transport.EventResponse, len(eventList))
	for i := range eventList {
		items[i] = *buildEventResponse(&eventList[i])
	}
	return &transport.EventListResponse{Items: items, Total: len(items)}, nil
}

// DeleteEvent removes an event with its tasks
func (s *Service) DeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.store.DeleteEvent(ctx, id, tenantID)
}

// CreateTask materializes a pending task for an event. The due date defaults
// to the event's next reminder date.
func (s *Service) CreateTask(ctx context.Context, tenantID uuid.UUID, req transport.CreateTaskRequest) (*transport.TaskResponse, error) {
	event, err := s.store.GetEventByID(ctx, req.EventID, tenantID)
	if err != nil {
		return nil, err
	}

	dueDate := event.NextReminderDate
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	task := repository.Task{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       event.ID,
		CustomerName:  event.CustomerName,
		CustomerPhone: event.CustomerPhone,
		DueDate:       dueDate,
		Status:        string(transport.TaskStatusPending),
		Notes:         nilIfEmpty(req.Notes),
		CreatedAt:     s.now(),
	}

	if err := s.store.CreateTask(ctx, &task); err != nil {
		return nil, err
	}
	resp := buildTaskResponse(&task, s.now())
	return &resp, nil
}

// MaterializeDueTask creates a pending task for a due event unless one is
// already open. Called by the scheduler dispatcher.
func (s *Service) MaterializeDueTask(ctx context.Context, tenantID uuid.UUID, eventID uuid.UUID) error {
	pending, err := s.store.HasPendingTask(ctx, eventID, tenantID)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}
	_, err = s.CreateTask(ctx, tenantID, transport.CreateTaskRequest{EventID: eventID})
	return err
}

// ListWorkQueue retrieves pending tasks ordered by due date, each classified
// overdue / due_today / upcoming relative to today
func (s *Service) ListWorkQueue(ctx context.Context, tenantID uuid.UUID) (*transport.TaskListResponse, error) {
	tasks, err := s.store.ListPendingTasks(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]transport.TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = buildTaskResponse(&tasks[i], now)
	}
	return &transport.TaskListResponse{Items: items, Total: len(items)}, nil
}

func buildEventResponse(e *repository.Event) *transport.EventResponse {
	return &transport.EventResponse{
		ID:               e.ID,
		CustomerID:       e.CustomerID,
		CustomerName:     e.CustomerName,
		CustomerPhone:    e.CustomerPhone,
		ServiceType:      e.ServiceType,
		IntervalMonths:   e.IntervalMonths,
		NextReminderDate: e.NextReminderDate,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func buildTaskResponse(t *repository.Task, now time.Time) transport.TaskResponse {
	resp := transport.TaskResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		CustomerName:  t.CustomerName,
		CustomerPhone: t.CustomerPhone,
		DueDate:       t.DueDate,
		Status:        transport.TaskStatus(t.Status),
		Notes:         t.Notes,
		CompletedAt:   t.CompletedAt,
		CreatedAt:     t.CreatedAt,
	}
	if resp.Status == transport.TaskStatusPending {
		resp.Due = classifyDue(t.DueDate, now)
	}
	return resp
}

// classifyDue buckets a due date against today for display only
func classifyDue(dueDate, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, dueDate.Location())
	switch {
	case due.Before(today):
		return transport.DueOverdue
	case due.Equal(today):
		return transport.DueToday
	default:
		return transport.DueUpcoming
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
