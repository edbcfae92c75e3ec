package service

import (
	"context"
	"time"

	"washdesk_backend/internal/customers/repository"
	"washdesk_backend/internal/customers/transport"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/phone"

	"github.com/google/uuid"
)

// Service provides business logic for customers.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new customers service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create creates a new customer. Phone numbers are normalized to E.164.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateCustomerRequest) (*transport.CustomerResponse, error) {
	now := time.Now()
	customer := repository.Customer{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      req.Name,
		Email:     nilIfEmpty(req.Email),
		Phone:     normalizedPhone(req.Phone),
		Notes:     nilIfEmpty(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, err
	}

	s.log.Info("customer created", "id", customer.ID, "name", customer.Name)
	return buildResponse(&customer), nil
}

// Update applies partial updates to a customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, req transport.UpdateCustomerRequest) (*transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = nilIfEmpty(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = normalizedPhone(*req.Phone)
	}
	if req.Notes != nil {
		customer.Notes = nilIfEmpty(*req.Notes)
	}
	customer.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return buildResponse(customer), nil
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return buildResponse(customer), nil
}

// Search finds customers by name, email or phone fragment.
func (s *Service) Search(ctx context.Context, tenantID uuid.UUID, query string, limit int) (*transport.CustomerListResponse, error) {
	customers, err := s.repo.Search(ctx, tenantID, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]transport.CustomerResponse, len(customers))
	for i, c := range customers {
		items[i] = *buildResponse(&c)
	}
	return &transport.CustomerListResponse{Items: items, Total: len(items)}, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.repo.Delete(ctx, id, tenantID)
}

func buildResponse(c *repository.Customer) *transport.CustomerResponse {
	return &transport.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func normalizedPhone(raw string) *string {
	if raw == "" {
		return nil
	}
	normalized := phone.NormalizeE164(raw)
	return &normalized
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
