package delivery

import (
	"context"
	"time"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// Mailer renders and sends the four appointment email variants.
// The resend-backed implementation lives in internal/mailer; tests use a
// recording fake. Implementations may return an error on provider failure.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot) error
	SendReminderEmail(ctx context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot, hoursUntilAppointment int) error
	SendRescheduleEmail(ctx context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot, oldStartTime, oldEndTime time.Time) error
	SendCancellationEmail(ctx context.Context, to, confirmationCode string, schedule domain.ScheduleSnapshot) error
}

// Broadcaster fans one event out to every connected listener of a tenant and
// reports how many clients were reached. Zero connected clients is success
// with count 0, never an error.
type Broadcaster interface {
	BroadcastToTenant(ctx context.Context, tenantID int64, eventType string, data map[string]any) (int, error)
}
