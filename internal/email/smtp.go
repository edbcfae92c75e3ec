package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendReminderDigestEmail(ctx context.Context, toEmail string, from, to time.Time, items []DigestItem) error {
	rows := make([]digestRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, digestRow{
			ServiceName:   item.ServiceName,
			ServiceType:   item.ServiceType,
			ScheduledDate: item.ScheduledDate.Format("2006-01-02"),
			IsPaid:        item.IsPaid,
		})
	}

	content, err := renderEmailTemplate("reminder_digest.html", reminderDigestEmailData{
		baseEmailData: baseEmailData{
			Title:   "Upcoming service reminders",
			Heading: "Upcoming service reminders",
		},
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		Items: rows,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectReminderDigestFmt, len(items)), content)
}

func (s *SMTPSender) SendOfferCompletedEmail(ctx context.Context, toEmail, offerNumber, customerName string, reminderCount int) error {
	content, err := renderEmailTemplate("offer_completed.html", offerCompletedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Offer completed",
			Heading: "Offer completed",
		},
		OfferNumber:   offerNumber,
		CustomerName:  customerName,
		ReminderCount: reminderCount,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectOfferCompletedFmt, offerNumber), content)
}
