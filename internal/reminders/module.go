// Package reminders provides the reminder planning domain module: turning a
// completed offer's selected products into dated future-contact records.
package reminders

import (
	"washdesk_backend/internal/events"
	apphttp "washdesk_backend/internal/http"
	"washdesk_backend/internal/reminders/handler"
	"washdesk_backend/internal/reminders/repository"
	"washdesk_backend/internal/reminders/service"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the reminders domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new reminders module with all dependencies wired.
// The SelectionSource is the offers repository.
func NewModule(pool *pgxpool.Pool, selection service.SelectionSource, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, selection, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "reminders"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	offers := ctx.Protected.Group("/offers")
	reminders := ctx.Protected.Group("/reminders")
	m.handler.RegisterRoutes(offers, reminders)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
