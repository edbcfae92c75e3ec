package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"washdesk_backend/internal/catalog"
	"washdesk_backend/internal/customers"
	"washdesk_backend/internal/email"
	"washdesk_backend/internal/events"
	"washdesk_backend/internal/followups"
	apphttp "washdesk_backend/internal/http"
	"washdesk_backend/internal/http/router"
	"washdesk_backend/internal/offers"
	"washdesk_backend/internal/outbox"
	"washdesk_backend/internal/reminders"
	"washdesk_backend/platform/config"
	"washdesk_backend/platform/db"
	"washdesk_backend/platform/logger"
	"washdesk_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, val, log)
	customersModule := customers.NewModule(pool, val, log)
	offersModule := offers.NewModule(pool, eventBus, val, log, cfg.GetDefaultVATRate())
	remindersModule := reminders.NewModule(pool, offersModule.Repository(), eventBus, val, log)
	followupsModule := followups.NewModule(pool, catalogModule.Service(), eventBus, val, log)

	// Offer completion kicks off reminder planning; failures fall back to the
	// side-effect outbox for structural retry by the scheduler.
	outboxRepo := outbox.New(pool)
	offersModule.Service().SetReminderPlanner(remindersModule.Service())
	offersModule.Service().SetOutboxWriter(outboxRepo)
	followupsModule.Service().SetOutboxWriter(outboxRepo)

	// Offer completion notices for staff (best-effort)
	notifier := email.NewNotifier(sender, cfg, log)
	notifier.RegisterHandlers(eventBus)

	seedTemplates(ctx, cfg, catalogModule, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			customersModule,
			offersModule,
			remindersModule,
			followupsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// seedTemplates loads the optional reminder template seed file for the
// configured tenant. Skipped when either setting is absent.
func seedTemplates(ctx context.Context, cfg config.SeedConfig, catalogModule *catalog.Module, log *logger.Logger) {
	path := cfg.GetTemplateSeedPath()
	rawTenant := cfg.GetTemplateSeedTenantID()
	if path == "" || rawTenant == "" {
		return
	}

	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		log.Error("invalid template seed tenant id", "value", rawTenant, "error", err)
		return
	}

	created, err := catalogModule.Service().LoadTemplateSeed(ctx, tenantID, path)
	if err != nil {
		log.Error("template seed failed", "path", path, "error", err)
		return
	}
	log.Info("template seed complete", "path", path, "created", created)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
