// Package offers provides the offer settlement domain module: the offer
// aggregate with its option tree, admin price approval, selection resolution
// and the completion transition that kicks off reminder planning.
package offers

import (
	"washdesk_backend/internal/events"
	apphttp "washdesk_backend/internal/http"
	"washdesk_backend/internal/offers/handler"
	"washdesk_backend/internal/offers/repository"
	"washdesk_backend/internal/offers/service"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the offers domain module
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates a new offers module with all dependencies wired
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger, defaultVATRate int) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log, defaultVATRate)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "offers"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module reads (reminder planning)
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/offers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
