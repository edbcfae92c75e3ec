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

// Offer is the database model for an offer header
type Offer struct {
	ID                 uuid.UUID  `db:"id"`
	TenantID           uuid.UUID  `db:"tenant_id"`
	OfferNumber        string     `db:"offer_number"`
	CustomerName       string     `db:"customer_name"`
	CustomerEmail      *string    `db:"customer_email"`
	CustomerPhone      *string    `db:"customer_phone"`
	VATRate            int        `db:"vat_rate"`
	TotalNetCents      int64      `db:"total_net_cents"`
	TotalGrossCents    int64      `db:"total_gross_cents"`
	ApprovedNetCents   *int64     `db:"approved_net_cents"`
	ApprovedGrossCents *int64     `db:"approved_gross_cents"`
	ApprovedAt         *time.Time `db:"approved_at"`
	ApprovedBy         *uuid.UUID `db:"approved_by"`
	SelectedState      []byte     `db:"selected_state"`
	Status             string     `db:"status"`
	CompletedAt        *time.Time `db:"completed_at"`
	CompletedBy        *uuid.UUID `db:"completed_by"`
	Notes              *string    `db:"notes"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// OfferOption is one selectable bundle: a scope variant or a standalone upsell
type OfferOption struct {
	ID               uuid.UUID `db:"id"`
	OfferID          uuid.UUID `db:"offer_id"`
	TenantID         uuid.UUID `db:"tenant_id"`
	Name             string    `db:"name"`
	ScopeID          *string   `db:"scope_id"`
	IsUpsell         bool      `db:"is_upsell"`
	IsSelected       bool      `db:"is_selected"`
	SubtotalNetCents int64     `db:"subtotal_net_cents"`
	SortOrder        int       `db:"sort_order"`
}

// OfferOptionItem is a line item inside an option
type OfferOptionItem struct {
	ID              uuid.UUID  `db:"id"`
	OptionID        uuid.UUID  `db:"option_id"`
	TenantID        uuid.UUID  `db:"tenant_id"`
	Name            string     `db:"name"`
	CustomName      *string    `db:"custom_name"`
	UnitPriceCents  int64      `db:"unit_price_cents"`
	Quantity        float64    `db:"quantity"`
	DiscountPercent float64    `db:"discount_percent"`
	IsOptional      bool       `db:"is_optional"`
	ProductID       *uuid.UUID `db:"product_id"`
	SortOrder       int        `db:"sort_order"`
}

// OptionWithItems pairs an option with its ordered line items
type OptionWithItems struct {
	Option OfferOption
	Items  []OfferOptionItem
}

// PlanningRow is one (selected item, product, template entry) tuple used by the
// reminder planner. Rows are ordered by option, item, then template sort order.
type PlanningRow struct {
	ProductID      uuid.UUID
	ProductName    string
	CustomName     *string
	TemplateItemID uuid.UUID
	MonthsAfter    int
	IsPaid         bool
	ServiceType    string
}

// ListParams contains parameters for listing offers
type ListParams struct {
	TenantID  uuid.UUID
	Status    *string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ListResult contains the paginated result of listing offers
type ListResult struct {
	Items      []Offer
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const offerNotFoundMsg = "offer not found"

// Repository provides database operations for offers
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new offers repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextOfferNumber atomically generates the next offer number for a tenant
func (r *Repository) NextOfferNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var nextNum int
	query := `
		INSERT INTO WD_offer_counters (tenant_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_number = WD_offer_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate offer number: %w", err)
	}

	year := time.Now().Year()
	return fmt.Sprintf("OFR-%d-%04d", year, nextNum), nil
}

// CreateWithOptions inserts an offer with its options and items in one transaction
func (r *Repository) CreateWithOptions(ctx context.Context, offer *Offer, options []OptionWithItems) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	offerQuery := `
		INSERT INTO WD_offers (
			id, tenant_id, offer_number, customer_name, customer_email, customer_phone,
			vat_rate, total_net_cents, total_gross_cents,
			approved_net_cents, approved_gross_cents, approved_at, approved_by,
			selected_state, status, completed_at, completed_by, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	if _, err := tx.Exec(ctx, offerQuery,
		offer.ID, offer.TenantID, offer.OfferNumber,
		offer.CustomerName, offer.CustomerEmail, offer.CustomerPhone,
		offer.VATRate, offer.TotalNetCents, offer.TotalGrossCents,
		offer.ApprovedNetCents, offer.ApprovedGrossCents, offer.ApprovedAt, offer.ApprovedBy,
		offer.SelectedState, offer.Status, offer.CompletedAt, offer.CompletedBy,
		offer.Notes, offer.CreatedAt, offer.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	if err := r.insertOptions(ctx, tx, options); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateWithOptions updates an offer header and optionally replaces its option tree
func (r *Repository) UpdateWithOptions(ctx context.Context, offer *Offer, options []OptionWithItems, replaceOptions bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE WD_offers SET
			customer_name = $3, customer_email = $4, customer_phone = $5,
			vat_rate = $6, total_net_cents = $7, total_gross_cents = $8,
			notes = $9, updated_at = $10
		WHERE id = $1 AND tenant_id = $2`

	result, err := tx.Exec(ctx, updateQuery,
		offer.ID, offer.TenantID,
		offer.CustomerName, offer.CustomerEmail, offer.CustomerPhone,
		offer.VATRate, offer.TotalNetCents, offer.TotalGrossCents,
		offer.Notes, offer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(offerNotFoundMsg)
	}

	if replaceOptions {
		// Items cascade with their options
		if _, err := tx.Exec(ctx, `DELETE FROM WD_offer_options WHERE offer_id = $1 AND tenant_id = $2`, offer.ID, offer.TenantID); err != nil {
			return fmt.Errorf("failed to delete old offer options: %w", err)
		}
		if err := r.insertOptions(ctx, tx, options); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) insertOptions(ctx context.Context, tx pgx.Tx, options []OptionWithItems) error {
	optionQuery := `
		INSERT INTO WD_offer_options (
			id, offer_id, tenant_id, name, scope_id, is_upsell, is_selected,
			subtotal_net_cents, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	itemQuery := `
		INSERT INTO WD_offer_option_items (
			id, option_id, tenant_id, name, custom_name, unit_price_cents,
			quantity, discount_percent, is_optional, product_id, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, ow := range options {
		opt := ow.Option
		if _, err := tx.Exec(ctx, optionQuery,
			opt.ID, opt.OfferID, opt.TenantID, opt.Name, opt.ScopeID,
			opt.IsUpsell, opt.IsSelected, opt.SubtotalNetCents, opt.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to insert offer option: %w", err)
		}
		for _, item := range ow.Items {
			if _, err := tx.Exec(ctx, itemQuery,
				item.ID, item.OptionID, item.TenantID, item.Name, item.CustomName,
				item.UnitPriceCents, item.Quantity, item.DiscountPercent,
				item.IsOptional, item.ProductID, item.SortOrder,
			); err != nil {
				return fmt.Errorf("failed to insert offer option item: %w", err)
			}
		}
	}
	return nil
}

// GetByID retrieves an offer header by its ID scoped to tenant
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Offer, error) {
	var o Offer
	query := `
		SELECT id, tenant_id, offer_number, customer_name, customer_email, customer_phone,
			vat_rate, total_net_cents, total_gross_cents,
			approved_net_cents, approved_gross_cents, approved_at, approved_by,
			selected_state, status, completed_at, completed_by, notes, created_at, updated_at
		FROM WD_offers WHERE id = $1 AND tenant_id = $2`

	err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&o.ID, &o.TenantID, &o.OfferNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.VATRate, &o.TotalNetCents, &o.TotalGrossCents,
		&o.ApprovedNetCents, &o.ApprovedGrossCents, &o.ApprovedAt, &o.ApprovedBy,
		&o.SelectedState, &o.Status, &o.CompletedAt, &o.CompletedBy,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(offerNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &o, nil
}

// GetOptionsWithItems retrieves the full option tree of an offer in sort order
func (r *Repository) GetOptionsWithItems(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) ([]OptionWithItems, error) {
	optionQuery := `
		SELECT id, offer_id, tenant_id, name, scope_id, is_upsell, is_selected,
			subtotal_net_cents, sort_order
		FROM WD_offer_options WHERE offer_id = $1 AND tenant_id = $2
		ORDER BY sort_order ASC`

	rows, err := r.pool.Query(ctx, optionQuery, offerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer options: %w", err)
	}
	defer rows.Close()

	var options []OptionWithItems
	for rows.Next() {
		var opt OfferOption
		if err := rows.Scan(
			&opt.ID, &opt.OfferID, &opt.TenantID, &opt.Name, &opt.ScopeID,
			&opt.IsUpsell, &opt.IsSelected, &opt.SubtotalNetCents, &opt.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer option: %w", err)
		}
		options = append(options, OptionWithItems{Option: opt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offer options: %w", err)
	}
	rows.Close()

	itemQuery := `
		SELECT i.id, i.option_id, i.tenant_id, i.name, i.custom_name, i.unit_price_cents,
			i.quantity, i.discount_percent, i.is_optional, i.product_id, i.sort_order
		FROM WD_offer_option_items i
		JOIN WD_offer_options o ON o.id = i.option_id
		WHERE o.offer_id = $1 AND i.tenant_id = $2
		ORDER BY i.sort_order ASC`

	itemRows, err := r.pool.Query(ctx, itemQuery, offerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer option items: %w", err)
	}
	defer itemRows.Close()

	itemsByOption := make(map[uuid.UUID][]OfferOptionItem)
	for itemRows.Next() {
		var item OfferOptionItem
		if err := itemRows.Scan(
			&item.ID, &item.OptionID, &item.TenantID, &item.Name, &item.CustomName,
			&item.UnitPriceCents, &item.Quantity, &item.DiscountPercent,
			&item.IsOptional, &item.ProductID, &item.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer option item: %w", err)
		}
		itemsByOption[item.OptionID] = append(itemsByOption[item.OptionID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offer option items: %w", err)
	}

	for i := range options {
		options[i].Items = itemsByOption[options[i].Option.ID]
	}
	return options, nil
}

// UpdateApprovedTotals persists both admin-approved amounts together with the
// approval timestamp and actor. The pair is never written one-sided.
func (r *Repository) UpdateApprovedTotals(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, netCents, grossCents int64, approvedAt time.Time, approvedBy uuid.UUID) error {
	query := `
		UPDATE WD_offers SET
			approved_net_cents = $3, approved_gross_cents = $4,
			approved_at = $5, approved_by = $6, updated_at = $5
		WHERE id = $1 AND tenant_id = $2`

	result, err := r.pool.Exec(ctx, query, id, tenantID, netCents, grossCents, approvedAt, approvedBy)
	if err != nil {
		return fmt.Errorf("failed to update approved totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(offerNotFoundMsg)
	}
	return nil
}

// SetSelection stores the customer's selection snapshot, flips option selection
// flags to match it, and caches the resolved totals on the offer.
func (r *Repository) SetSelection(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, state []byte, selectedOptionIDs []uuid.UUID, totalNetCents, totalGrossCents int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE WD_offers SET
			selected_state = $3, total_net_cents = $4, total_gross_cents = $5, updated_at = $6
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, state, totalNetCents, totalGrossCents, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to store selection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(offerNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE WD_offer_options SET is_selected = (id = ANY($3))
		WHERE offer_id = $1 AND tenant_id = $2`,
		id, tenantID, selectedOptionIDs,
	); err != nil {
		return fmt.Errorf("failed to update option selection flags: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkCompleted transitions an offer to completed. The status guard makes the
// transition single-shot: a second call affects zero rows.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, completedAt time.Time, completedBy uuid.UUID) error {
	query := `
		UPDATE WD_offers SET status = 'completed', completed_at = $3, completed_by = $4, updated_at = $3
		WHERE id = $1 AND tenant_id = $2 AND status <> 'completed'`

	result, err := r.pool.Exec(ctx, query, id, tenantID, completedAt, completedBy)
	if err != nil {
		return fmt.Errorf("failed to mark offer completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("offer already completed")
	}
	return nil
}

// GetSelectedItemsForPlanning joins the offer's selected options through their
// items to catalog products and reminder template entries. Only items whose
// product carries a non-empty template produce rows.
func (r *Repository) GetSelectedItemsForPlanning(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) ([]PlanningRow, error) {
	query := `
		SELECT p.id, p.name, i.custom_name, ti.id, ti.months_after, ti.is_paid, ti.service_type
		FROM WD_offer_options o
		JOIN WD_offer_option_items i ON i.option_id = o.id
		JOIN WD_products p ON p.id = i.product_id
		JOIN WD_reminder_templates t ON t.id = p.reminder_template_id
		JOIN WD_reminder_template_items ti ON ti.template_id = t.id
		WHERE o.offer_id = $1 AND o.tenant_id = $2 AND o.is_selected = TRUE
		ORDER BY o.sort_order ASC, i.sort_order ASC, ti.sort_order ASC`

	rows, err := r.pool.Query(ctx, query, offerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planning rows: %w", err)
	}
	defer rows.Close()

	var planning []PlanningRow
	for rows.Next() {
		var row PlanningRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.CustomName, &row.TemplateItemID, &row.MonthsAfter, &row.IsPaid, &row.ServiceType); err != nil {
			return nil, fmt.Errorf("failed to scan planning row: %w", err)
		}
		planning = append(planning, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate planning rows: %w", err)
	}
	return planning, nil
}

// Delete removes an offer (cascade deletes options, items and reminders)
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM WD_offers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(offerNotFoundMsg)
	}
	return nil
}

// List retrieves offers with filtering and pagination
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return nil, err
	}
	sortOrder, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return nil, err
	}

	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	baseQuery := `
		FROM WD_offers
		WHERE tenant_id = $1
			AND ($2::text IS NULL OR status = $2)
			AND ($3::text IS NULL OR offer_number ILIKE $3 OR customer_name ILIKE $3)
	`
	args := []interface{}{params.TenantID, statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count offers: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `
		SELECT id, tenant_id, offer_number, customer_name, customer_email, customer_phone,
			vat_rate, total_net_cents, total_gross_cents,
			approved_net_cents, approved_gross_cents, approved_at, approved_by,
			selected_state, status, completed_at, completed_by, notes, created_at, updated_at
		` + baseQuery + `
		ORDER BY
			CASE WHEN $4 = 'offerNumber' AND $5 = 'asc' THEN offer_number END ASC,
			CASE WHEN $4 = 'offerNumber' AND $5 = 'desc' THEN offer_number END DESC,
			CASE WHEN $4 = 'status' AND $5 = 'asc' THEN status END ASC,
			CASE WHEN $4 = 'status' AND $5 = 'desc' THEN status END DESC,
			CASE WHEN $4 = 'total' AND $5 = 'asc' THEN total_gross_cents END ASC,
			CASE WHEN $4 = 'total' AND $5 = 'desc' THEN total_gross_cents END DESC,
			CASE WHEN $4 = 'createdAt' AND $5 = 'asc' THEN created_at END ASC,
			CASE WHEN $4 = 'createdAt' AND $5 = 'desc' THEN created_at END DESC,
			created_at DESC
		LIMIT $6 OFFSET $7`

	args = append(args, sortBy, sortOrder, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var items []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(
			&o.ID, &o.TenantID, &o.OfferNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.VATRate, &o.TotalNetCents, &o.TotalGrossCents,
			&o.ApprovedNetCents, &o.ApprovedGrossCents, &o.ApprovedAt, &o.ApprovedBy,
			&o.SelectedState, &o.Status, &o.CompletedAt, &o.CompletedBy,
			&o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func resolveSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return "createdAt", nil
	}
	switch sortBy {
	case "offerNumber", "status", "total", "createdAt":
		return sortBy, nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(sortOrder string) (string, error) {
	if sortOrder == "" {
		return "desc", nil
	}
	switch sortOrder {
	case "asc", "desc":
		return sortOrder, nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}
