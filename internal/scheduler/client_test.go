package scheduler

import (
	"context"
	"testing"
	"time"

	"washdesk_backend/internal/scheduler/tasks"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestNewClient_RejectsMalformedRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{redisURL: "not-a-url"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnqueueKind_WritesTaskToRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "washdesk"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer func() { _ = client.Close() }()

	payload := tasks.FollowUpDuePayload{TenantID: uuid.New(), EventID: uuid.New()}
	if err := client.EnqueueKind(context.Background(), tasks.TypeFollowUpDue, payload, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Fatal("expected queued task data in redis")
	}
}

func TestRedisClientOpt_ParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Fatal("password not carried over")
	}
	if opt.DB != 2 {
		t.Fatalf("unexpected db: %d", opt.DB)
	}
	if opt.TLSConfig != nil {
		t.Fatal("unexpected tls config for plain url")
	}
}

func TestRedisClientOpt_InsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure tls config")
	}
}
