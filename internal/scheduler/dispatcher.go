package scheduler

import (
	"context"
	"time"

	followupsrepo "washdesk_backend/internal/followups/repository"
	"washdesk_backend/internal/outbox"
	remindersrepo "washdesk_backend/internal/reminders/repository"
	"washdesk_backend/internal/scheduler/tasks"
	"washdesk_backend/platform/config"
	"washdesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	outboxPollInterval = 2 * time.Second
	dueScanInterval    = time.Minute
	digestInterval     = 24 * time.Hour
	claimBatchSize     = 50
	dueScanBatchSize   = 100
)

// Dispatcher ferries work into the asynq queue from two sources: the side
// effect outbox (failed best-effort writes awaiting retry) and the follow-up
// events whose next reminder date has arrived. It also fans out the daily
// reminder digest per tenant.
type Dispatcher struct {
	client    *Client
	outbox    *outbox.Repository
	followups *followupsrepo.Repository
	reminders *remindersrepo.Repository
	log       *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Dispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		client:    client,
		outbox:    outbox.New(pool),
		followups: followupsrepo.New(pool),
		reminders: remindersrepo.New(pool),
		log:       log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	outboxTicker := time.NewTicker(outboxPollInterval)
	defer outboxTicker.Stop()
	dueTicker := time.NewTicker(dueScanInterval)
	defer dueTicker.Stop()
	digestTicker := time.NewTicker(digestInterval)
	defer digestTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-outboxTicker.C:
			d.dispatchOutbox(ctx)
		case <-dueTicker.C:
			d.dispatchDueFollowUps(ctx)
		case <-digestTicker.C:
			d.dispatchReminderDigests(ctx)
		}
	}
}

func (d *Dispatcher) dispatchOutbox(ctx context.Context) {
	records, err := d.outbox.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return
	}

	for _, rec := range records {
		payload := tasks.OutboxDuePayload{OutboxID: rec.ID, TenantID: rec.TenantID}
		if err := d.client.EnqueueKind(ctx, tasks.TypeOutboxDue, payload, rec.RunAt); err != nil {
			msg := err.Error()
			_ = d.outbox.MarkPending(ctx, rec.ID, &msg)
		}
	}
}

// dispatchDueFollowUps enqueues task materialization for events whose next
// reminder date has passed. The worker-side pending-task guard makes repeat
// enqueues for the same event harmless.
func (d *Dispatcher) dispatchDueFollowUps(ctx context.Context) {
	events, err := d.followups.ListDueEvents(ctx, time.Now().UTC(), dueScanBatchSize)
	if err != nil {
		d.log.Warn("due follow-up scan failed", "error", err)
		return
	}

	for _, event := range events {
		payload := tasks.FollowUpDuePayload{TenantID: event.TenantID, EventID: event.ID}
		if err := d.client.EnqueueKind(ctx, tasks.TypeFollowUpDue, payload, time.Now()); err != nil {
			d.log.Warn("failed to enqueue due follow-up", "event_id", event.ID, "error", err)
		}
	}
}

func (d *Dispatcher) dispatchReminderDigests(ctx context.Context) {
	from := time.Now().UTC()
	to := from.Add(digestInterval)

	tenants, err := d.reminders.ListTenantsWithDueBetween(ctx, from, to)
	if err != nil {
		d.log.Warn("digest tenant scan failed", "error", err)
		return
	}

	for _, tenantID := range tenants {
		payload := tasks.ReminderDigestPayload{TenantID: tenantID, From: from, To: to}
		if err := d.client.EnqueueKind(ctx, tasks.TypeReminderDigest, payload, time.Now()); err != nil {
			d.log.Warn("failed to enqueue reminder digest", "tenant_id", tenantID, "error", err)
		}
	}
}
