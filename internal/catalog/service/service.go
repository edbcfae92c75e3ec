package service

import (
	"context"
	"time"

	"washdesk_backend/internal/catalog/repository"
	"washdesk_backend/internal/catalog/transport"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Service provides business logic for products and reminder templates.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateTemplate creates a reminder template with its items.
func (s *Service) CreateTemplate(ctx context.Context, tenantID uuid.UUID, req transport.CreateTemplateRequest) (*transport.TemplateResponse, error) {
	now := time.Now()
	tpl := repository.ReminderTemplate{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := buildTemplateItems(tpl.ID, req.Items)

	if err := s.repo.CreateTemplateWithItems(ctx, &tpl, items); err != nil {
		return nil, err
	}

	s.log.Info("reminder template created", "id", tpl.ID, "name", tpl.Name, "items", len(items))
	return buildTemplateResponse(&tpl, items), nil
}

// UpdateTemplate replaces a template's name and item set.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.UpdateTemplateRequest) (*transport.TemplateResponse, error) {
	tpl, err := s.repo.GetTemplateByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	tpl.Name = req.Name
	tpl.UpdatedAt = time.Now()
	items := buildTemplateItems(tpl.ID, req.Items)

	if err := s.repo.UpdateTemplateWithItems(ctx, tpl, items); err != nil {
		return nil, err
	}

	return buildTemplateResponse(tpl, items), nil
}

// GetTemplate retrieves a template with its items.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transport.TemplateResponse, error) {
	tpl, err := s.repo.GetTemplateByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetTemplateItems(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	return buildTemplateResponse(tpl, items), nil
}

// ListTemplates retrieves all templates for a tenant with their items.
func (s *Service) ListTemplates(ctx context.Context, tenantID uuid.UUID) (*transport.TemplateListResponse, error) {
	templates, err := s.repo.ListTemplates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.TemplateResponse, len(templates))
	for i, tpl := range templates {
		items, err := s.repo.GetTemplateItems(ctx, tpl.ID)
		if err != nil {
			return nil, err
		}
		responses[i] = *buildTemplateResponse(&tpl, items)
	}

	return &transport.TemplateListResponse{Items: responses, Total: len(responses)}, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.repo.DeleteTemplate(ctx, id, tenantID)
}

// ListProducts retrieves the active products for a tenant.
func (s *Service) ListProducts(ctx context.Context, tenantID uuid.UUID) (*transport.ProductListResponse, error) {
	products, err := s.repo.ListProducts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.ProductResponse, len(products))
	for i, p := range products {
		responses[i] = transport.ProductResponse{
			ID:                    p.ID,
			Name:                  p.Name,
			ServiceType:           p.ServiceType,
			DefaultIntervalMonths: p.DefaultIntervalMonths,
			ReminderTemplateID:    p.ReminderTemplateID,
			IsActive:              p.IsActive,
		}
	}

	return &transport.ProductListResponse{Items: responses, Total: len(responses)}, nil
}

// GetProductInterval returns a product's default follow-up interval in months,
// or nil when the product has none. Used by the followups module.
func (s *Service) GetProductInterval(ctx context.Context, productID uuid.UUID, tenantID uuid.UUID) (*int, error) {
	p, err := s.repo.GetProductByID(ctx, productID, tenantID)
	if err != nil {
		return nil, err
	}
	return p.DefaultIntervalMonths, nil
}

func buildTemplateItems(templateID uuid.UUID, reqs []transport.TemplateItemRequest) []repository.TemplateItem {
	items := make([]repository.TemplateItem, len(reqs))
	for i, it := range reqs {
		items[i] = repository.TemplateItem{
			ID:          uuid.New(),
			TemplateID:  templateID,
			MonthsAfter: it.MonthsAfter,
			IsPaid:      it.IsPaid,
			ServiceType: it.ServiceType,
			SortOrder:   i,
		}
	}
	return items
}

func buildTemplateResponse(tpl *repository.ReminderTemplate, items []repository.TemplateItem) *transport.TemplateResponse {
	respItems := make([]transport.TemplateItemResponse, len(items))
	for i, it := range items {
		respItems[i] = transport.TemplateItemResponse{
			ID:          it.ID,
			MonthsAfter: it.MonthsAfter,
			IsPaid:      it.IsPaid,
			ServiceType: it.ServiceType,
			SortOrder:   it.SortOrder,
		}
	}
	return &transport.TemplateResponse{
		ID:        tpl.ID,
		Name:      tpl.Name,
		Items:     respItems,
		CreatedAt: tpl.CreatedAt,
		UpdatedAt: tpl.UpdatedAt,
	}
}
