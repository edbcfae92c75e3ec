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

// Customer is the database model for a CRM customer.
type Customer struct {
	ID        uuid.UUID `db:"id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const customerNotFoundMsg = "customer not found"

// Repository provides database operations for customers
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, c *Customer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO WD_customers (id, tenant_id, name, email, phone, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// Update overwrites a customer's editable fields.
func (r *Repository) Update(ctx context.Context, c *Customer) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE WD_customers SET name = $3, email = $4, phone = $5, notes = $6, updated_at = $7
		 WHERE id = $1 AND tenant_id = $2`,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMsg)
	}
	return nil
}

// GetByID retrieves a customer scoped to tenant.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, email, phone, notes, created_at, updated_at
		 FROM WD_customers WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(customerNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// Search retrieves customers matching the query on name, email or phone.
func (r *Repository) Search(ctx context.Context, tenantID uuid.UUID, query string, limit int) ([]Customer, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var searchParam interface{}
	if query != "" {
		searchParam = "%" + query + "%"
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, email, phone, notes, created_at, updated_at
		 FROM WD_customers
		 WHERE tenant_id = $1
			AND ($2::text IS NULL OR name ILIKE $2 OR email ILIKE $2 OR phone ILIKE $2)
		 ORDER BY name ASC
		 LIMIT $3`,
		tenantID, searchParam, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// Delete removes a customer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM WD_customers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMsg)
	}
	return nil
}
