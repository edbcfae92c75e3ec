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

// ── Domain Models ─────────────────────────────────────────────────────────────

// Product is the database model for a catalog product. Only the fields the
// settlement and reminder engine needs are mapped; pricing and presentation
// data stay with the external catalog system.
type Product struct {
	ID                    uuid.UUID  `db:"id"`
	TenantID              uuid.UUID  `db:"tenant_id"`
	Name                  string     `db:"name"`
	ServiceType           string     `db:"service_type"`
	DefaultIntervalMonths *int       `db:"default_interval_months"`
	ReminderTemplateID    *uuid.UUID `db:"reminder_template_id"`
	IsActive              bool       `db:"is_active"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// ReminderTemplate is the database model for a reminder template header.
type ReminderTemplate struct {
	ID        uuid.UUID `db:"id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TemplateItem is one entry of a reminder template: contact the customer
// MonthsAfter months after offer completion.
type TemplateItem struct {
	ID          uuid.UUID `db:"id"`
	TemplateID  uuid.UUID `db:"template_id"`
	MonthsAfter int       `db:"months_after"`
	IsPaid      bool      `db:"is_paid"`
	ServiceType string    `db:"service_type"`
	SortOrder   int       `db:"sort_order"`
}

const templateNotFoundMsg = "reminder template not found"
const productNotFoundMsg = "product not found"

// ── Repository ────────────────────────────────────────────────────────────────

// Repository provides database operations for products and reminder templates
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProductByID retrieves a product scoped to tenant.
func (r *Repository) GetProductByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Product, error) {
	var p Product
	query := `
		SELECT id, tenant_id, name, service_type, default_interval_months, reminder_template_id,
			is_active, created_at, updated_at
		FROM WD_products WHERE id = $1 AND tenant_id = $2`

	err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.ServiceType, &p.DefaultIntervalMonths,
		&p.ReminderTemplateID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(productNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// ListProducts retrieves all active products for a tenant.
func (r *Repository) ListProducts(ctx context.Context, tenantID uuid.UUID) ([]Product, error) {
	query := `
		SELECT id, tenant_id, name, service_type, default_interval_months, reminder_template_id,
			is_active, created_at, updated_at
		FROM WD_products WHERE tenant_id = $1 AND is_active = true
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Name, &p.ServiceType, &p.DefaultIntervalMonths,
			&p.ReminderTemplateID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// CreateTemplateWithItems inserts a template header and its items in one transaction.
func (r *Repository) CreateTemplateWithItems(ctx context.Context, tpl *ReminderTemplate, items []TemplateItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO WD_reminder_templates (id, tenant_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tpl.ID, tpl.TenantID, tpl.Name, tpl.CreatedAt, tpl.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert reminder template: %w", err)
	}

	if err := insertTemplateItems(ctx, tx, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateTemplateWithItems updates a template header and replaces its item set.
func (r *Repository) UpdateTemplateWithItems(ctx context.Context, tpl *ReminderTemplate, items []TemplateItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE WD_reminder_templates SET name = $3, updated_at = $4
		 WHERE id = $1 AND tenant_id = $2`,
		tpl.ID, tpl.TenantID, tpl.Name, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(templateNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM WD_reminder_template_items WHERE template_id = $1`, tpl.ID); err != nil {
		return fmt.Errorf("failed to delete old template items: %w", err)
	}
	if err := insertTemplateItems(ctx, tx, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertTemplateItems(ctx context.Context, tx pgx.Tx, items []TemplateItem) error {
	query := `
		INSERT INTO WD_reminder_template_items (id, template_id, months_after, is_paid, service_type, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID, item.TemplateID, item.MonthsAfter, item.IsPaid, item.ServiceType, item.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to insert template item: %w", err)
		}
	}
	return nil
}

// GetTemplateByID retrieves a template header scoped to tenant.
func (r *Repository) GetTemplateByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*ReminderTemplate, error) {
	var tpl ReminderTemplate
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, created_at, updated_at
		 FROM WD_reminder_templates WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&tpl.ID, &tpl.TenantID, &tpl.Name, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(templateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get reminder template: %w", err)
	}
	return &tpl, nil
}

// GetTemplateItems retrieves the items of a template ordered by sort order.
func (r *Repository) GetTemplateItems(ctx context.Context, templateID uuid.UUID) ([]TemplateItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, months_after, is_paid, service_type, sort_order
		 FROM WD_reminder_template_items WHERE template_id = $1
		 ORDER BY sort_order ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query template items: %w", err)
	}
	defer rows.Close()

	var items []TemplateItem
	for rows.Next() {
		var it TemplateItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.MonthsAfter, &it.IsPaid, &it.ServiceType, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template items: %w", err)
	}
	return items, nil
}

// ListTemplates retrieves all templates for a tenant.
func (r *Repository) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]ReminderTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, created_at, updated_at
		 FROM WD_reminder_templates WHERE tenant_id = $1
		 ORDER BY name ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder templates: %w", err)
	}
	defer rows.Close()

	var templates []ReminderTemplate
	for rows.Next() {
		var tpl ReminderTemplate
		if err := rows.Scan(&tpl.ID, &tpl.TenantID, &tpl.Name, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate removes a template (cascade deletes items). Products that
// reference it keep a dangling reminder_template_id which the planner treats
// as "no template".
func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM WD_reminder_templates WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(templateNotFoundMsg)
	}
	return nil
}
