package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v3"

	"github.com/dockwise/scheduling-portal/internal/delivery"
	"github.com/dockwise/scheduling-portal/internal/domain"
)

// ResendMailer implements delivery.Mailer on top of the Resend API.
type ResendMailer struct {
	client    *resend.Client
	from      string
	templates map[string]*template.Template
}

func NewResendMailer(apiKey, fromEmail, fromName string) *ResendMailer {
	return &ResendMailer{
		client:    resend.NewClient(apiKey),
		from:      fmt.Sprintf("%s <%s>", fromName, fromEmail),
		templates: parseTemplates(),
	}
}

type templateData struct {
	Title                 string
	ConfirmationCode      string
	Schedule              domain.ScheduleSnapshot
	OldStartTime          time.Time
	OldEndTime            time.Time
	HoursUntilAppointment int
}

func (m *ResendMailer) send(to, subject, templateName string, data templateData) error {
	tmpl, ok := m.templates[templateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s email: %w", templateName, err)
	}

	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	return nil
}

func (m *ResendMailer) SendConfirmationEmail(_ context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot) error {
	return m.send(to, "Dock appointment confirmed — "+schedule.FacilityName, "confirmation", templateData{
		Title:            "Appointment Confirmed",
		ConfirmationCode: confirmationCode,
		Schedule:         schedule,
	})
}

func (m *ResendMailer) SendReminderEmail(_ context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot, hoursUntilAppointment int) error {
	return m.send(to, fmt.Sprintf("Reminder: dock appointment in %d hour(s)", hoursUntilAppointment), "reminder", templateData{
		Title:                 "Appointment Reminder",
		ConfirmationCode:      confirmationCode,
		Schedule:              schedule,
		HoursUntilAppointment: hoursUntilAppointment,
	})
}

func (m *ResendMailer) SendRescheduleEmail(_ context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot, oldStartTime, oldEndTime time.Time) error {
	return m.send(to, "Dock appointment rescheduled — "+schedule.FacilityName, "reschedule", templateData{
		Title:            "Appointment Rescheduled",
		ConfirmationCode: confirmationCode,
		Schedule:         schedule,
		OldStartTime:     oldStartTime,
		OldEndTime:       oldEndTime,
	})
}

func (m *ResendMailer) SendCancellationEmail(_ context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot) error {
	return m.send(to, "Dock appointment cancelled — "+schedule.FacilityName, "cancellation", templateData{
		Title:            "Appointment Cancelled",
		ConfirmationCode: confirmationCode,
		Schedule:         schedule,
	})
}

var _ delivery.Mailer = (*ResendMailer)(nil)
