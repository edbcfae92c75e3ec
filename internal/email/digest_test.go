package email

import (
	"context"
	"errors"
	"testing"
	"time"

	reminderstransport "washdesk_backend/internal/reminders/transport"
	"washdesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEmailConfig struct {
	recipients []string
}

func (c fakeEmailConfig) GetEmailEnabled() bool         { return true }
func (c fakeEmailConfig) GetSMTPHost() string           { return "localhost" }
func (c fakeEmailConfig) GetSMTPPort() int              { return 587 }
func (c fakeEmailConfig) GetSMTPUsername() string       { return "" }
func (c fakeEmailConfig) GetSMTPPassword() string       { return "" }
func (c fakeEmailConfig) GetEmailFromName() string      { return "WashDesk" }
func (c fakeEmailConfig) GetEmailFromAddress() string   { return "noreply@example.com" }
func (c fakeEmailConfig) GetDigestRecipients() []string { return c.recipients }

type fakeLister struct {
	due []reminderstransport.ReminderResponse
	err error
}

func (f fakeLister) ListDueBetween(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]reminderstransport.ReminderResponse, error) {
	return f.due, f.err
}

type recordedSend struct {
	to    string
	items []DigestItem
}

type fakeSender struct {
	NoopSender
	sends []recordedSend
	err   error
}

func (f *fakeSender) SendReminderDigestEmail(_ context.Context, toEmail string, _, _ time.Time, items []DigestItem) error {
	if f.err != nil {
		return f.err
	}
	f.sends = append(f.sends, recordedSend{to: toEmail, items: items})
	return nil
}

func TestSendDueReminderDigest_MailsEachRecipient(t *testing.T) {
	lister := fakeLister{due: []reminderstransport.ReminderResponse{
		{ServiceName: "Ceramic coating refresh", ServiceType: "coating", ScheduledDate: time.Now().AddDate(0, 0, 3), IsPaid: true},
		{ServiceName: "Interior detail", ServiceType: "detailing", ScheduledDate: time.Now().AddDate(0, 0, 5)},
	}}
	sender := &fakeSender{}
	svc := NewDigestService(lister, sender, fakeEmailConfig{recipients: []string{"a@example.com", "b@example.com"}}, logger.New("development"))

	err := svc.SendDueReminderDigest(context.Background(), uuid.New(), time.Now(), time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sends) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sender.sends))
	}
	if len(sender.sends[0].items) != 2 {
		t.Fatalf("expected 2 digest items, got %d", len(sender.sends[0].items))
	}
	if sender.sends[0].items[0].ServiceName != "Ceramic coating refresh" {
		t.Fatalf("unexpected first item: %s", sender.sends[0].items[0].ServiceName)
	}
}

func TestSendDueReminderDigest_NoRecipientsIsNoop(t *testing.T) {
	lister := fakeLister{due: []reminderstransport.ReminderResponse{{ServiceName: "Wax"}}}
	sender := &fakeSender{}
	svc := NewDigestService(lister, sender, fakeEmailConfig{}, logger.New("development"))

	if err := svc.SendDueReminderDigest(context.Background(), uuid.New(), time.Now(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sends) != 0 {
		t.Fatalf("expected no sends, got %d", len(sender.sends))
	}
}

func TestSendDueReminderDigest_NothingDueSkipsSend(t *testing.T) {
	sender := &fakeSender{}
	svc := NewDigestService(fakeLister{}, sender, fakeEmailConfig{recipients: []string{"a@example.com"}}, logger.New("development"))

	if err := svc.SendDueReminderDigest(context.Background(), uuid.New(), time.Now(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sends) != 0 {
		t.Fatalf("expected no sends, got %d", len(sender.sends))
	}
}

func TestSendDueReminderDigest_SendFailurePropagates(t *testing.T) {
	lister := fakeLister{due: []reminderstransport.ReminderResponse{{ServiceName: "Wax"}}}
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := NewDigestService(lister, sender, fakeEmailConfig{recipients: []string{"a@example.com"}}, logger.New("development"))

	if err := svc.SendDueReminderDigest(context.Background(), uuid.New(), time.Now(), time.Now()); err == nil {
		t.Fatal("expected error from failed send")
	}
}

func TestRenderDigestTemplate(t *testing.T) {
	content, err := renderEmailTemplate("reminder_digest.html", reminderDigestEmailData{
		baseEmailData: baseEmailData{Title: "Upcoming service reminders", Heading: "Upcoming service reminders"},
		From:          "2026-08-29",
		To:            "2026-08-30",
		Items:         []digestRow{{ServiceName: "Wax", ServiceType: "detailing", ScheduledDate: "2026-08-29", IsPaid: true}},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if content == "" {
		t.Fatal("expected rendered content")
	}
}
