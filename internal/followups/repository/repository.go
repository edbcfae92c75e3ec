package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"washdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is the recurring relationship anchor for a customer × service.
// It outlives any single task and carries when the next contact is due.
type Event struct {
	ID               uuid.UUID  `db:"id"`
	TenantID         uuid.UUID  `db:"tenant_id"`
	CustomerID       *uuid.UUID `db:"customer_id"`
	CustomerName     string     `db:"customer_name"`
	CustomerPhone    *string    `db:"customer_phone"`
	ServiceType      string     `db:"service_type"`
	IntervalMonths   *int       `db:"interval_months"`
	NextReminderDate time.Time  `db:"next_reminder_date"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// Task is one due instance of a follow-up event
type Task struct {
	ID            uuid.UUID  `db:"id"`
	TenantID      uuid.UUID  `db:"tenant_id"`
	EventID       uuid.UUID  `db:"event_id"`
	CustomerName  string     `db:"customer_name"`
	CustomerPhone *string    `db:"customer_phone"`
	DueDate       time.Time  `db:"due_date"`
	Status        string     `db:"status"`
	Notes         *string    `db:"notes"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

const (
	eventNotFoundMsg = "follow-up event not found"
	taskNotFoundMsg  = "follow-up task not found"
)

// Repository provides database operations for follow-up events and tasks
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new followups repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Events ────────────────────────────────────────────────────────────────────

// CreateEvent inserts a follow-up event
func (r *Repository) CreateEvent(ctx context.Context, e *Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO WD_followup_events (
			id, tenant_id, customer_id, customer_name, customer_phone,
			service_type, interval_months, next_reminder_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.TenantID, e.CustomerID, e.CustomerName, e.CustomerPhone,
		e.ServiceType, e.IntervalMonths, e.NextReminderDate, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert follow-up event: %w", err)
	}
	return nil
}

// GetEventByID retrieves a follow-up event scoped to tenant
func (r *Repository) GetEventByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Event, error) {
	var e Event
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, customer_id, customer_name, customer_phone,
			service_type, interval_months, next_reminder_date, created_at, updated_at
		FROM WD_followup_events WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(
		&e.ID, &e.TenantID, &e.CustomerID, &e.CustomerName, &e.CustomerPhone,
		&e.ServiceType, &e.IntervalMonths, &e.NextReminderDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(eventNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get follow-up event: %w", err)
	}
	return &e, nil
}

// ListEvents retrieves all follow-up events of a tenant ordered by next date
func (r *Repository) ListEvents(ctx context.Context, tenantID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, customer_id, customer_name, customer_phone,
			service_type, interval_months, next_reminder_date, created_at, updated_at
		FROM WD_followup_events WHERE tenant_id = $1
		ORDER BY next_reminder_date ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-up events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListDueEvents retrieves events whose next reminder date has arrived
func (r *Repository) ListDueEvents(ctx context.Context, asOf time.Time, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, customer_id, customer_name, customer_phone,
			service_type, interval_months, next_reminder_date, created_at, updated_at
		FROM WD_followup_events
		WHERE next_reminder_date <= $1
		ORDER BY next_reminder_date ASC
		LIMIT $2`,
		asOf, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due follow-up events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.CustomerID, &e.CustomerName, &e.CustomerPhone,
			&e.ServiceType, &e.IntervalMonths, &e.NextReminderDate, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow-up events: %w", err)
	}
	return events, nil
}

// UpdateNextReminderDate pushes an event's next contact date forward
func (r *Repository) UpdateNextReminderDate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, next time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE WD_followup_events SET next_reminder_date = $3, updated_at = $4
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, next, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update next reminder date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(eventNotFoundMsg)
	}
	return nil
}

// DeleteEvent removes a follow-up event (cascade deletes its tasks)
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM WD_followup_events WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete follow-up event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(eventNotFoundMsg)
	}
	return nil
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

// CreateTask inserts a pending task for an event
func (r *Repository) CreateTask(ctx context.Context, t *Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO WD_followup_tasks (
			id, tenant_id, event_id, customer_name, customer_phone,
			due_date, status, notes, completed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.TenantID, t.EventID, t.CustomerName, t.CustomerPhone,
		t.DueDate, t.Status, t.Notes, t.CompletedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert follow-up task: %w", err)
	}
	return nil
}

// GetTaskByID retrieves a task scoped to tenant
func (r *Repository) GetTaskByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, event_id, customer_name, customer_phone,
			due_date, status, notes, completed_at, created_at
		FROM WD_followup_tasks WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(
		&t.ID, &t.TenantID, &t.EventID, &t.CustomerName, &t.CustomerPhone,
		&t.DueDate, &t.Status, &t.Notes, &t.CompletedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(taskNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get follow-up task: %w", err)
	}
	return &t, nil
}

// ListPendingTasks retrieves the work queue ordered by due date ascending
func (r *Repository) ListPendingTasks(ctx context.Context, tenantID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, event_id, customer_name, customer_phone,
			due_date, status, notes, completed_at, created_at
		FROM WD_followup_tasks
		WHERE tenant_id = $1 AND status = 'pending'
		ORDER BY due_date ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.EventID, &t.CustomerName, &t.CustomerPhone,
			&t.DueDate, &t.Status, &t.Notes, &t.CompletedAt, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow-up tasks: %w", err)
	}
	return tasks, nil
}

// HasPendingTask reports whether an event already has an open task
func (r *Repository) HasPendingTask(ctx context.Context, eventID uuid.UUID, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM WD_followup_tasks
			WHERE event_id = $1 AND tenant_id = $2 AND status = 'pending'
		)`,
		eventID, tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending task: %w", err)
	}
	return exists, nil
}

// CompleteTask marks a pending task completed. A nil notes value keeps the
// existing notes; supplied notes overwrite them.
func (r *Repository) CompleteTask(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, completedAt time.Time, notes *string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE WD_followup_tasks SET
			status = 'completed', completed_at = $3, notes = COALESCE($4, notes)
		WHERE id = $1 AND tenant_id = $2 AND status = 'pending'`,
		id, tenantID, completedAt, notes,
	)
	if err != nil {
		return fmt.Errorf("failed to complete follow-up task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("task already completed")
	}
	return nil
}
