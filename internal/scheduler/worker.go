package scheduler

import (
	"context"
	"fmt"
	"time"

	"washdesk_backend/internal/outbox"
	"washdesk_backend/internal/scheduler/tasks"
	"washdesk_backend/platform/config"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxOutboxAttempts caps outbox retries before a record is parked as failed.
const maxOutboxAttempts = 5

// ReminderPlanner retries reminder materialization for completed offers.
type ReminderPlanner interface {
	PlanForOffer(ctx context.Context, tenantID, offerID uuid.UUID, completedAt time.Time) (int, error)
}

// FollowUpManager retries event reschedules and materializes due tasks.
type FollowUpManager interface {
	RescheduleEvent(ctx context.Context, tenantID uuid.UUID, eventID uuid.UUID, payload tasks.RescheduleFollowUpPayload) error
	MaterializeDueTask(ctx context.Context, tenantID uuid.UUID, eventID uuid.UUID) error
}

// DigestSender emails a tenant's staff the reminders becoming due.
type DigestSender interface {
	SendDueReminderDigest(ctx context.Context, tenantID uuid.UUID, from, to time.Time) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	outbox    *outbox.Repository
	planner   ReminderPlanner
	followups FollowUpManager
	digest    DigestSender
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		outbox: outbox.New(pool),
		log:    log,
	}

	mux.HandleFunc(tasks.TypeOutboxDue, w.handleOutboxDue)
	mux.HandleFunc(tasks.TypeFollowUpDue, w.handleFollowUpDue)
	mux.HandleFunc(tasks.TypeReminderDigest, w.handleReminderDigest)

	return w, nil
}

// SetReminderPlanner wires the reminders service for outbox retries.
func (w *Worker) SetReminderPlanner(planner ReminderPlanner) {
	w.planner = planner
}

// SetFollowUpManager wires the followups service for reschedule retries and
// due-task materialization.
func (w *Worker) SetFollowUpManager(manager FollowUpManager) {
	w.followups = manager
}

// SetDigestSender wires the email digest. Optional; without it digest tasks
// are dropped.
func (w *Worker) SetDigestSender(digest DigestSender) {
	w.digest = digest
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleOutboxDue executes a claimed outbox record. The outbox owns the retry
// loop: an execution failure moves the record back to pending (or parks it as
// failed after too many attempts) and the task itself never errors to asynq.
func (w *Worker) handleOutboxDue(ctx context.Context, task *asynq.Task) error {
	var payload tasks.OutboxDuePayload
	if err := tasks.Decode(task.Payload(), &payload); err != nil {
		return err
	}

	rec, err := w.outbox.GetByID(ctx, payload.OutboxID)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded || rec.Status == outbox.StatusFailed {
		return nil
	}

	if err := w.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if err := w.executeOutboxRecord(ctx, rec); err != nil {
		w.log.Warn("outbox record execution failed", "outbox_id", rec.ID, "kind", rec.Kind, "attempts", rec.Attempts+1, "error", err)
		if rec.Attempts+1 >= maxOutboxAttempts {
			return w.outbox.MarkFailed(ctx, rec.ID, err.Error())
		}
		msg := err.Error()
		return w.outbox.MarkPending(ctx, rec.ID, &msg)
	}

	return w.outbox.MarkSucceeded(ctx, rec.ID)
}

func (w *Worker) executeOutboxRecord(ctx context.Context, rec outbox.Record) error {
	switch rec.Kind {
	case tasks.TypePlanReminders:
		if w.planner == nil {
			return fmt.Errorf("reminder planner not configured")
		}
		var payload tasks.PlanRemindersPayload
		if err := tasks.Decode(rec.Payload, &payload); err != nil {
			return err
		}
		_, err := w.planner.PlanForOffer(ctx, payload.TenantID, payload.OfferID, payload.CompletedAt)
		return err

	case tasks.TypeRescheduleFollowUp:
		if w.followups == nil {
			return fmt.Errorf("followup manager not configured")
		}
		var payload tasks.RescheduleFollowUpPayload
		if err := tasks.Decode(rec.Payload, &payload); err != nil {
			return err
		}
		return w.followups.RescheduleEvent(ctx, payload.TenantID, payload.EventID, payload)

	default:
		return fmt.Errorf("unknown outbox kind %q", rec.Kind)
	}
}

func (w *Worker) handleFollowUpDue(ctx context.Context, task *asynq.Task) error {
	if w.followups == nil {
		return nil
	}

	var payload tasks.FollowUpDuePayload
	if err := tasks.Decode(task.Payload(), &payload); err != nil {
		return err
	}

	return w.followups.MaterializeDueTask(ctx, payload.TenantID, payload.EventID)
}

func (w *Worker) handleReminderDigest(ctx context.Context, task *asynq.Task) error {
	if w.digest == nil {
		return nil
	}

	var payload tasks.ReminderDigestPayload
	if err := tasks.Decode(task.Payload(), &payload); err != nil {
		return err
	}

	return w.digest.SendDueReminderDigest(ctx, payload.TenantID, payload.From, payload.To)
}
