// Package catalog provides the product / reminder-template domain module.
package catalog

import (
	"washdesk_backend/internal/catalog/handler"
	"washdesk_backend/internal/catalog/repository"
	"washdesk_backend/internal/catalog/service"
	apphttp "washdesk_backend/internal/http"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the catalog domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new catalog module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	templates := ctx.Protected.Group("/reminder-templates")
	products := ctx.Protected.Group("/products")
	m.handler.RegisterRoutes(templates, products)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
