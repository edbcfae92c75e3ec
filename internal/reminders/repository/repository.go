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

// Reminder is the database model for one materialized future contact
type Reminder struct {
	ID            uuid.UUID `db:"id"`
	TenantID      uuid.UUID `db:"tenant_id"`
	OfferID       uuid.UUID `db:"offer_id"`
	ServiceName   string    `db:"service_name"`
	ScheduledDate time.Time `db:"scheduled_date"`
	MonthsAfter   int       `db:"months_after"`
	IsPaid        bool      `db:"is_paid"`
	ServiceType   string    `db:"service_type"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

const reminderNotFoundMsg = "reminder not found"

// Repository provides database operations for offer reminders
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new reminders repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBatch inserts a batch of reminders in one transaction
func (r *Repository) InsertBatch(ctx context.Context, reminders []Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO WD_offer_reminders (
			id, tenant_id, offer_id, service_name, scheduled_date,
			months_after, is_paid, service_type, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, rem := range reminders {
		if _, err := tx.Exec(ctx, query,
			rem.ID, rem.TenantID, rem.OfferID, rem.ServiceName, rem.ScheduledDate,
			rem.MonthsAfter, rem.IsPaid, rem.ServiceType, rem.Status, rem.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert reminder: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListByOffer retrieves all reminders of an offer ordered by scheduled date
func (r *Repository) ListByOffer(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) ([]Reminder, error) {
	query := `
		SELECT id, tenant_id, offer_id, service_name, scheduled_date,
			months_after, is_paid, service_type, status, created_at
		FROM WD_offer_reminders
		WHERE offer_id = $1 AND tenant_id = $2
		ORDER BY scheduled_date ASC`

	return r.queryReminders(ctx, query, offerID, tenantID)
}

// ListDueBetween retrieves scheduled reminders falling due inside the window
func (r *Repository) ListDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Reminder, error) {
	query := `
		SELECT id, tenant_id, offer_id, service_name, scheduled_date,
			months_after, is_paid, service_type, status, created_at
		FROM WD_offer_reminders
		WHERE tenant_id = $1 AND status = 'scheduled' AND scheduled_date >= $2 AND scheduled_date < $3
		ORDER BY scheduled_date ASC`

	return r.queryReminders(ctx, query, tenantID, from, to)
}

// ListTenantsWithDueBetween returns the tenants that have scheduled reminders
// falling due inside the window. Drives the per-tenant digest fan-out.
func (r *Repository) ListTenantsWithDueBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT tenant_id
		FROM WD_offer_reminders
		WHERE status = 'scheduled' AND scheduled_date >= $1 AND scheduled_date < $2`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants with due reminders: %w", err)
	}
	defer rows.Close()

	var tenants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}
	return tenants, nil
}

func (r *Repository) queryReminders(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(
			&rem.ID, &rem.TenantID, &rem.OfferID, &rem.ServiceName, &rem.ScheduledDate,
			&rem.MonthsAfter, &rem.IsPaid, &rem.ServiceType, &rem.Status, &rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

// UpdateStatus updates the status of one reminder
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE WD_offer_reminders SET status = $3 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reminderNotFoundMsg)
	}
	return nil
}

// Delete removes one reminder. The parent offer's completed status is untouched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM WD_offer_reminders WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reminderNotFoundMsg)
	}
	return nil
}

// DeleteByOffer removes the full reminder batch of an offer and returns the count
func (r *Repository) DeleteByOffer(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM WD_offer_reminders WHERE offer_id = $1 AND tenant_id = $2`, offerID, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete offer reminders: %w", err)
	}
	return result.RowsAffected(), nil
}

// GetByID retrieves one reminder
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Reminder, error) {
	var rem Reminder
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, offer_id, service_name, scheduled_date,
			months_after, is_paid, service_type, status, created_at
		FROM WD_offer_reminders WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(
		&rem.ID, &rem.TenantID, &rem.OfferID, &rem.ServiceName, &rem.ScheduledDate,
		&rem.MonthsAfter, &rem.IsPaid, &rem.ServiceType, &rem.Status, &rem.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(reminderNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &rem, nil
}
