package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobKind discriminates what side effect a queued job produces.
type JobKind string

const (
	KindEmail    JobKind = "email"
	KindRealtime JobKind = "realtime"
	KindPush     JobKind = "push"
)

func (k JobKind) IsValid() bool {
	switch k {
	case KindEmail, KindRealtime, KindPush:
		return true
	}
	return false
}

// EmailEventKind is the producer-assigned tag selecting which email variant
// a job sends. It is decided at enqueue time by the caller that knows which
// appointment event actually occurred; the handler only switches on it.
type EmailEventKind string

const (
	EmailConfirmation EmailEventKind = "confirmation"
	EmailReminder     EmailEventKind = "reminder"
	EmailReschedule   EmailEventKind = "reschedule"
	EmailCancellation EmailEventKind = "cancellation"
)

func (e EmailEventKind) IsValid() bool {
	switch e {
	case EmailConfirmation, EmailReminder, EmailReschedule, EmailCancellation:
		return true
	}
	return false
}

// ScheduleSnapshot is the denormalized appointment view embedded in email
// payloads so handlers never have to join facility/dock/carrier tables.
type ScheduleSnapshot struct {
	ID                  int64     `json:"id"`
	Status              string    `json:"status"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	FacilityName        string    `json:"facility_name"`
	DockName            string    `json:"dock_name"`
	AppointmentTypeName string    `json:"appointment_type_name"`
	CarrierName         string    `json:"carrier_name,omitempty"`
	DriverName          string    `json:"driver_name,omitempty"`
	DriverPhone         string    `json:"driver_phone,omitempty"`
	TruckNumber         string    `json:"truck_number,omitempty"`
}

// EmailPayload carries everything an email job needs.
// OldStartTime/OldEndTime are set only for reschedule events,
// HoursUntilAppointment only for reminders.
type EmailPayload struct {
	To                    string           `json:"to"`
	ConfirmationCode      string           `json:"confirmation_code"`
	Event                 EmailEventKind   `json:"event"`
	Schedule              ScheduleSnapshot `json:"schedule"`
	OldStartTime          *time.Time       `json:"old_start_time,omitempty"`
	OldEndTime            *time.Time       `json:"old_end_time,omitempty"`
	HoursUntilAppointment *int             `json:"hours_until_appointment,omitempty"`
}

// ClassifyEmailEvent applies the legacy first-match-wins precedence for
// callers migrating from field-sniffing enqueue sites:
//
//  1. a reminder horizon is set          → reminder
//  2. both old times are set             → reschedule
//  3. the snapshot status is "cancelled" → cancellation
//  4. otherwise                          → confirmation
func ClassifyEmailEvent(p EmailPayload) EmailEventKind {
	switch {
	case p.HoursUntilAppointment != nil:
		return EmailReminder
	case p.OldStartTime != nil && p.OldEndTime != nil:
		return EmailReschedule
	case p.Schedule.Status == ScheduleStatusCancelled:
		return EmailCancellation
	default:
		return EmailConfirmation
	}
}

// ScheduleStatusCancelled is the snapshot status that selects the
// cancellation email variant.
const ScheduleStatusCancelled = "cancelled"

// RealtimePayload is fanned out to every connected listener of a tenant.
type RealtimePayload struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// PushPayload is reserved for the mobile push extension point.
// The handler is a deliberate no-op; the shape is kept for forward
// compatibility with the queued job format.
type PushPayload struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// NotificationJob is the unit of work placed on a queue. Exactly one payload
// pointer is non-nil and it must match Kind; the constructors below are the
// only supported way to build one.
type NotificationJob struct {
	ID         string  `json:"id"`
	Kind       JobKind `json:"kind"`
	TenantID   int64   `json:"tenant_id"`
	ScheduleID *int64  `json:"schedule_id,omitempty"`
	UserID     *int64  `json:"user_id,omitempty"`

	Email    *EmailPayload    `json:"email,omitempty"`
	Realtime *RealtimePayload `json:"realtime,omitempty"`
	Push     *PushPayload     `json:"push,omitempty"`
}

func newJob(kind JobKind, tenantID int64) NotificationJob {
	return NotificationJob{
		ID:       uuid.New().String(),
		Kind:     kind,
		TenantID: tenantID,
	}
}

// NewEmailJob builds an email job. The payload's event tag must be valid;
// use ClassifyEmailEvent when the caller has not assigned one explicitly.
func NewEmailJob(tenantID int64, p EmailPayload) (NotificationJob, error) {
	if tenantID <= 0 {
		return NotificationJob{}, ErrMissingTenant
	}
	if !p.Event.IsValid() {
		return NotificationJob{}, ErrInvalidEmailEvent
	}
	j := newJob(KindEmail, tenantID)
	j.Email = &p
	if p.Schedule.ID != 0 {
		id := p.Schedule.ID
		j.ScheduleID = &id
	}
	return j, nil
}

func NewRealtimeJob(tenantID int64, p RealtimePayload) (NotificationJob, error) {
	if tenantID <= 0 {
		return NotificationJob{}, ErrMissingTenant
	}
	if p.EventType == "" {
		return NotificationJob{}, ErrMissingEventType
	}
	j := newJob(KindRealtime, tenantID)
	j.Realtime = &p
	return j, nil
}

func NewPushJob(tenantID int64, p PushPayload) (NotificationJob, error) {
	if tenantID <= 0 {
		return NotificationJob{}, ErrMissingTenant
	}
	j := newJob(KindPush, tenantID)
	j.Push = &p
	return j, nil
}

// Validate re-checks the kind/payload invariant, used after decoding a job
// that crossed the broker as JSON.
func (j *NotificationJob) Validate() error {
	if !j.Kind.IsValid() {
		return ErrUnknownJobKind
	}
	if j.TenantID <= 0 {
		return ErrMissingTenant
	}
	var set int
	if j.Email != nil {
		set++
		if j.Kind != KindEmail {
			return ErrPayloadMismatch
		}
	}
	if j.Realtime != nil {
		set++
		if j.Kind != KindRealtime {
			return ErrPayloadMismatch
		}
	}
	if j.Push != nil {
		set++
		if j.Kind != KindPush {
			return ErrPayloadMismatch
		}
	}
	if set != 1 {
		return ErrPayloadMismatch
	}
	return nil
}
