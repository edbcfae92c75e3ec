// Package followups provides the follow-up scheduling domain module: the
// recurring customer contact anchors and the staff work queue of due tasks.
package followups

import (
	"washdesk_backend/internal/events"
	"washdesk_backend/internal/followups/handler"
	"washdesk_backend/internal/followups/repository"
	"washdesk_backend/internal/followups/service"
	apphttp "washdesk_backend/internal/http"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the followups domain module
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates a new followups module with all dependencies wired.
// The IntervalSource is the catalog service.
func NewModule(pool *pgxpool.Pool, intervals service.IntervalSource, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, intervals, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "followups"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for the scheduler's due-event scan
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	eventsGroup := ctx.Protected.Group("/followup-events")
	tasksGroup := ctx.Protected.Group("/followup-tasks")
	m.handler.RegisterRoutes(eventsGroup, tasksGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
