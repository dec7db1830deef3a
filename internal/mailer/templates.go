package mailer

import "html/template"

// Shared layout plus one body template per email variant. Kept as embedded
// strings so the binary is self-contained; the portal's branding layer can
// swap these without touching delivery logic.
const layoutTmpl = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933; margin: 0; padding: 24px;">
  <div style="max-width: 600px; margin: 0 auto; border: 1px solid #e4e7eb; border-radius: 8px; padding: 24px;">
    <h2 style="margin-top: 0;">{{.Title}}</h2>
    {{template "body" .}}
    <hr style="border: none; border-top: 1px solid #e4e7eb; margin: 24px 0;">
    <p style="color: #7b8794; font-size: 12px;">
      Confirmation code: <strong>{{.ConfirmationCode}}</strong><br>
      This is an automated message from the dock scheduling portal.
    </p>
  </div>
</body>
</html>`

const confirmationTmpl = `
{{define "body"}}
<p>Your dock appointment is confirmed.</p>
<table cellpadding="4">
  <tr><td><strong>Facility</strong></td><td>{{.Schedule.FacilityName}}</td></tr>
  <tr><td><strong>Dock</strong></td><td>{{.Schedule.DockName}}</td></tr>
  <tr><td><strong>Type</strong></td><td>{{.Schedule.AppointmentTypeName}}</td></tr>
  <tr><td><strong>Start</strong></td><td>{{.Schedule.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  <tr><td><strong>End</strong></td><td>{{.Schedule.EndTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  {{if .Schedule.CarrierName}}<tr><td><strong>Carrier</strong></td><td>{{.Schedule.CarrierName}}</td></tr>{{end}}
  {{if .Schedule.DriverName}}<tr><td><strong>Driver</strong></td><td>{{.Schedule.DriverName}}</td></tr>{{end}}
</table>
{{end}}`

const reminderTmpl = `
{{define "body"}}
<p>Reminder: your dock appointment starts in {{.HoursUntilAppointment}} hour(s).</p>
<table cellpadding="4">
  <tr><td><strong>Facility</strong></td><td>{{.Schedule.FacilityName}}</td></tr>
  <tr><td><strong>Dock</strong></td><td>{{.Schedule.DockName}}</td></tr>
  <tr><td><strong>Start</strong></td><td>{{.Schedule.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
</table>
{{end}}`

const rescheduleTmpl = `
{{define "body"}}
<p>Your dock appointment has been rescheduled.</p>
<table cellpadding="4">
  <tr><td><strong>Previous start</strong></td><td>{{.OldStartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  <tr><td><strong>Previous end</strong></td><td>{{.OldEndTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  <tr><td><strong>New start</strong></td><td>{{.Schedule.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  <tr><td><strong>New end</strong></td><td>{{.Schedule.EndTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
  <tr><td><strong>Facility</strong></td><td>{{.Schedule.FacilityName}}</td></tr>
  <tr><td><strong>Dock</strong></td><td>{{.Schedule.DockName}}</td></tr>
</table>
{{end}}`

const cancellationTmpl = `
{{define "body"}}
<p>Your dock appointment has been cancelled.</p>
<table cellpadding="4">
  <tr><td><strong>Facility</strong></td><td>{{.Schedule.FacilityName}}</td></tr>
  <tr><td><strong>Dock</strong></td><td>{{.Schedule.DockName}}</td></tr>
  <tr><td><strong>Was scheduled for</strong></td><td>{{.Schedule.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}</td></tr>
</table>
<p>If this was unexpected, contact the facility to rebook.</p>
{{end}}`

func parseTemplates() map[string]*template.Template {
	parsed := make(map[string]*template.Template, 4)
	for name, body := range map[string]string{
		"confirmation": confirmationTmpl,
		"reminder":     reminderTmpl,
		"reschedule":   rescheduleTmpl,
		"cancellation": cancellationTmpl,
	} {
		parsed[name] = template.Must(template.Must(template.New(name).Parse(layoutTmpl)).Parse(body))
	}
	return parsed
}
