package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"washdesk_backend/internal/events"
	"washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/offers/transport"
	"washdesk_backend/platform/apperr"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the offers service depends on.
// Implemented by *repository.Repository; faked in tests.
type Store interface {
	NextOfferNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
	CreateWithOptions(ctx context.Context, offer *repository.Offer, options []repository.OptionWithItems) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*repository.Offer, error)
	GetOptionsWithItems(ctx context.Context, offerID uuid.UUID, tenantID uuid.UUID) ([]repository.OptionWithItems, error)
	UpdateWithOptions(ctx context.Context, offer *repository.Offer, options []repository.OptionWithItems, replaceOptions bool) error
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	UpdateApprovedTotals(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, netCents, grossCents int64, approvedAt time.Time, approvedBy uuid.UUID) error
	SetSelection(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, state []byte, selectedOptionIDs []uuid.UUID, totalNetCents, totalGrossCents int64) error
	MarkCompleted(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, completedAt time.Time, completedBy uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// ReminderPlanner is the narrow interface the offers service needs to
// materialize reminders when an offer completes. Implemented by the
// reminders service; injected after construction to break circular deps.
type ReminderPlanner interface {
	PlanForOffer(ctx context.Context, tenantID, offerID uuid.UUID, completedAt time.Time) (int, error)
}

// OutboxWriter records a failed best-effort side effect for structural retry.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tenantID uuid.UUID, kind string, payload any) error
}

// Service provides business logic for offers
type Service struct {
	repo           Store
	bus            events.Bus
	log            *logger.Logger
	planner        ReminderPlanner // optional — nil means completion skips planning
	outbox         OutboxWriter    // optional
	defaultVATRate int
}

// New creates a new offers service
func New(repo Store, bus events.Bus, log *logger.Logger, defaultVATRate int) *Service {
	return &Service{repo: repo, bus: bus, log: log, defaultVATRate: defaultVATRate}
}

// SetReminderPlanner injects the reminder planner (set after construction)
func (s *Service) SetReminderPlanner(p ReminderPlanner) {
	s.planner = p
}

// SetOutboxWriter injects the side-effect outbox writer
func (s *Service) SetOutboxWriter(w OutboxWriter) {
	s.outbox = w
}

// Create creates a new offer with its option tree, computing rollups server-side
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateOfferRequest) (*transport.OfferResponse, error) {
	offerNumber, err := s.repo.NextOfferNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("generate offer number: %w", err)
	}

	vatRate := s.defaultVATRate
	if req.VATRate != nil {
		vatRate = *req.VATRate
	}

	now := time.Now()
	offer := repository.Offer{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OfferNumber:   offerNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: nilIfEmpty(req.CustomerEmail),
		CustomerPhone: nilIfEmpty(req.CustomerPhone),
		VATRate:       vatRate,
		Status:        string(transport.OfferStatusDraft),
		Notes:         nilIfEmpty(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	options := buildOptionTree(offer.ID, tenantID, req.Options)
	offer.TotalNetCents, offer.TotalGrossCents = rollupTotals(options, vatRate)

	if err := s.repo.CreateWithOptions(ctx, &offer, options); err != nil {
		return nil, err
	}

	s.log.Info("offer created", "id", offer.ID, "number", offer.OfferNumber)
	return buildResponse(&offer, options), nil
}

// Update updates an offer and recomputes totals. Supplying options replaces
// the whole option tree. Completed offers are immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.UpdateOfferRequest) (*transport.OfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if offer.Status == string(transport.OfferStatusCompleted) {
		return nil, apperr.Conflict("completed offers cannot be edited")
	}

	if req.CustomerName != nil {
		offer.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		offer.CustomerEmail = nilIfEmpty(*req.CustomerEmail)
	}
	if req.CustomerPhone != nil {
		offer.CustomerPhone = nilIfEmpty(*req.CustomerPhone)
	}
	if req.VATRate != nil {
		offer.VATRate = *req.VATRate
	}
	if req.Notes != nil {
		offer.Notes = req.Notes
	}

	var options []repository.OptionWithItems
	if req.Options != nil {
		options = buildOptionTree(offer.ID, tenantID, *req.Options)
	} else {
		options, err = s.repo.GetOptionsWithItems(ctx, id, tenantID)
		if err != nil {
			return nil, err
		}
	}
	offer.TotalNetCents, offer.TotalGrossCents = rollupTotals(options, offer.VATRate)
	offer.UpdatedAt = time.Now()

	if err := s.repo.UpdateWithOptions(ctx, offer, options, req.Options != nil); err != nil {
		return nil, err
	}
	return buildResponse(offer, options), nil
}

// GetByID retrieves an offer with its full option tree
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transport.OfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	options, err := s.repo.GetOptionsWithItems(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return buildResponse(offer, options), nil
}

// List retrieves offers with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListOffersRequest) (*transport.OfferListResponse, error) {
	params := repository.ListParams{
		TenantID:  tenantID,
		Status:    nilIfEmpty(req.Status),
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      max(req.Page, 1),
		PageSize:  clampPageSize(req.PageSize),
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.OfferResponse, len(result.Items))
	for i, o := range result.Items {
		items[i] = *buildResponse(&o, nil)
	}

	return &transport.OfferListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// ApproveTotals reconciles and persists the admin-approved net/gross pair
func (s *Service) ApproveTotals(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, actorID uuid.UUID, req transport.ApproveTotalsRequest) (*transport.OfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	netCents, grossCents, err := ReconcileApprovedTotals(req.Net, req.Gross, req.LastEdited, offer.VATRate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateApprovedTotals(ctx, id, tenantID, netCents, grossCents, time.Now(), actorID); err != nil {
		return nil, err
	}

	s.log.Info("offer totals approved", "id", id, "net_cents", netCents, "gross_cents", grossCents)
	return s.GetByID(ctx, id, tenantID)
}

// SetSelection stores the customer's selection snapshot and caches the
// resolved totals on the offer
func (s *Service) SetSelection(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.SetSelectionRequest) (*transport.ResolvedSelectionResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if offer.Status == string(transport.OfferStatusCompleted) {
		return nil, apperr.Conflict("completed offers cannot change selection")
	}

	options, err := s.repo.GetOptionsWithItems(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	snap := req.Selection
	resolved := ResolveSelection(options, &snap, offer.VATRate)

	state, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode selection snapshot: %w", err)
	}

	if err := s.repo.SetSelection(ctx, id, tenantID, state, selectedOptionIDs(options, &snap), resolved.TotalNetCents, resolved.TotalGrossCents); err != nil {
		return nil, err
	}

	return buildResolvedResponse(resolved), nil
}

// ResolveSelection returns the derived view of what the customer picked.
// A nil result means the customer never made a selection.
func (s *Service) ResolveSelection(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transport.ResolvedSelectionResponse, error) {
	offer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	snap, err := decodeSnapshot(offer.SelectedState)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	options, err := s.repo.GetOptionsWithItems(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	return buildResolvedResponse(ResolveSelection(options, snap, offer.VATRate)), nil
}

// Delete removes an offer with its options, items and reminders
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.repo.Delete(ctx, id, tenantID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func decodeSnapshot(state []byte) (*transport.SelectionSnapshot, error) {
	if len(state) == 0 {
		return nil, nil
	}
	var snap transport.SelectionSnapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return nil, fmt.Errorf("decode selection snapshot: %w", err)
	}
	return &snap, nil
}

// selectedOptionIDs lists the option ids the snapshot marks as taken:
// chosen scope variants plus accepted upsells.
func selectedOptionIDs(options []repository.OptionWithItems, snap *transport.SelectionSnapshot) []uuid.UUID {
	var ids []uuid.UUID
	for _, ow := range options {
		opt := ow.Option
		if opt.ScopeID != nil {
			if chosen, ok := snap.VariantChoices[*opt.ScopeID]; ok && chosen == opt.ID {
				ids = append(ids, opt.ID)
			}
			continue
		}
		if opt.IsUpsell && snap.UpsellChoices[opt.ID] {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func buildOptionTree(offerID uuid.UUID, tenantID uuid.UUID, reqs []transport.OfferOptionRequest) []repository.OptionWithItems {
	options := make([]repository.OptionWithItems, len(reqs))
	for i, optReq := range reqs {
		opt := repository.OfferOption{
			ID:         uuid.New(),
			OfferID:    offerID,
			TenantID:   tenantID,
			Name:       optReq.Name,
			ScopeID:    optReq.ScopeID,
			IsUpsell:   optReq.IsUpsell,
			IsSelected: optReq.IsSelected,
			SortOrder:  i,
		}

		items := make([]repository.OfferOptionItem, len(optReq.Items))
		var subtotal int64
		for j, itReq := range optReq.Items {
			item := repository.OfferOptionItem{
				ID:              uuid.New(),
				OptionID:        opt.ID,
				TenantID:        tenantID,
				Name:            itReq.Name,
				CustomName:      itReq.CustomName,
				UnitPriceCents:  itReq.UnitPriceCents,
				Quantity:        itReq.Quantity,
				DiscountPercent: itReq.DiscountPercent,
				IsOptional:      itReq.IsOptional,
				ProductID:       itReq.ProductID,
				SortOrder:       j,
			}
			items[j] = item
			subtotal += itemNetCents(item)
		}
		opt.SubtotalNetCents = subtotal
		options[i] = repository.OptionWithItems{Option: opt, Items: items}
	}
	return options
}

// rollupTotals sums the selected options into the system-computed pair
func rollupTotals(options []repository.OptionWithItems, vatRate int) (netCents, grossCents int64) {
	var net int64
	for _, ow := range options {
		if ow.Option.IsSelected {
			net += optionValueCents(ow)
		}
	}
	return net, roundCents(float64(net) * vatMultiplier(vatRate))
}

func buildResponse(o *repository.Offer, options []repository.OptionWithItems) *transport.OfferResponse {
	respOptions := make([]transport.OfferOptionResponse, len(options))
	for i, ow := range options {
		items := make([]transport.OfferItemResponse, len(ow.Items))
		for j, item := range ow.Items {
			items[j] = transport.OfferItemResponse{
				ID:              item.ID,
				Name:            item.Name,
				CustomName:      item.CustomName,
				UnitPriceCents:  item.UnitPriceCents,
				Quantity:        item.Quantity,
				DiscountPercent: item.DiscountPercent,
				IsOptional:      item.IsOptional,
				ProductID:       item.ProductID,
				LineNetCents:    itemNetCents(item),
				SortOrder:       item.SortOrder,
			}
		}
		respOptions[i] = transport.OfferOptionResponse{
			ID:               ow.Option.ID,
			Name:             ow.Option.Name,
			ScopeID:          ow.Option.ScopeID,
			IsUpsell:         ow.Option.IsUpsell,
			IsSelected:       ow.Option.IsSelected,
			SubtotalNetCents: ow.Option.SubtotalNetCents,
			SortOrder:        ow.Option.SortOrder,
			Items:            items,
		}
	}

	resp := &transport.OfferResponse{
		ID:                 o.ID,
		OfferNumber:        o.OfferNumber,
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		CustomerPhone:      o.CustomerPhone,
		VATRate:            o.VATRate,
		TotalNetCents:      o.TotalNetCents,
		TotalGrossCents:    o.TotalGrossCents,
		ApprovedNetCents:   o.ApprovedNetCents,
		ApprovedGrossCents: o.ApprovedGrossCents,
		ApprovedAt:         o.ApprovedAt,
		Status:             transport.OfferStatus(o.Status),
		CompletedAt:        o.CompletedAt,
		Notes:              o.Notes,
		Options:            respOptions,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	resp.EditableNet, resp.EditableGross = resp.EditablePrices()
	return resp
}

func buildResolvedResponse(r *ResolvedSelection) *transport.ResolvedSelectionResponse {
	if r == nil {
		return nil
	}
	lines := make([]transport.ResolvedLineResponse, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = transport.ResolvedLineResponse{Name: line.Name, PriceCents: line.PriceCents}
	}
	return &transport.ResolvedSelectionResponse{
		Lines:           lines,
		TotalNetCents:   r.TotalNetCents,
		TotalGrossCents: r.TotalGrossCents,
	}
}

func clampPageSize(size int) int {
	if size < 1 || size > 100 {
		return 50
	}
	return size
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
