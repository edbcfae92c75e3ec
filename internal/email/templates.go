package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type digestRow struct {
	ServiceName   string
	ServiceType   string
	ScheduledDate string
	IsPaid        bool
}

type reminderDigestEmailData struct {
	baseEmailData
	From  string
	To    string
	Items []digestRow
}

type offerCompletedEmailData struct {
	baseEmailData
	OfferNumber   string
	CustomerName  string
	ReminderCount int
}

func renderEmailTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
