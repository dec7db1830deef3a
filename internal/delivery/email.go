package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/domain"
	"github.com/dockwise/scheduling-portal/internal/ratelimiter"
)

// EmailHandler sends exactly one email variant per job, selected by the
// producer-assigned event tag. Payload problems surface as job failures the
// first time the job runs, so the queue's retry policy applies to them the
// same way it applies to provider failures.
type EmailHandler struct {
	mailer  Mailer
	limiter *ratelimiter.Limiter
	logger  *zap.Logger
}

func NewEmailHandler(mailer Mailer, limiter *ratelimiter.Limiter, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{mailer: mailer, limiter: limiter, logger: logger}
}

func (h *EmailHandler) Handle(ctx context.Context, job *domain.NotificationJob) error {
	p := job.Email
	if p == nil {
		return domain.ErrEmailPayloadMissing
	}
	if p.To == "" {
		return domain.ErrMissingRecipient
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}

	var err error
	switch p.Event {
	case domain.EmailReminder:
		if p.HoursUntilAppointment == nil {
			err = fmt.Errorf("reminder email without hours_until_appointment: %w", domain.ErrPayloadMismatch)
			break
		}
		err = h.mailer.SendReminderEmail(ctx, p.To, p.ConfirmationCode, p.Schedule, *p.HoursUntilAppointment)
	case domain.EmailReschedule:
		if p.OldStartTime == nil || p.OldEndTime == nil {
			err = fmt.Errorf("reschedule email without old times: %w", domain.ErrPayloadMismatch)
			break
		}
		err = h.mailer.SendRescheduleEmail(ctx, p.To, p.ConfirmationCode, p.Schedule, *p.OldStartTime, *p.OldEndTime)
	case domain.EmailCancellation:
		err = h.mailer.SendCancellationEmail(ctx, p.To, p.ConfirmationCode, p.Schedule)
	case domain.EmailConfirmation:
		err = h.mailer.SendConfirmationEmail(ctx, p.To, p.ConfirmationCode, p.Schedule)
	default:
		err = domain.ErrInvalidEmailEvent
	}

	if err != nil {
		h.logger.Error("email send failed",
			zap.Int64("tenant_id", job.TenantID),
			zap.String("recipient", p.To),
			zap.String("confirmation_code", p.ConfirmationCode),
			zap.Int64p("schedule_id", job.ScheduleID),
			zap.String("event", string(p.Event)),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("email sent",
		zap.Int64("tenant_id", job.TenantID),
		zap.String("recipient", p.To),
		zap.String("event", string(p.Event)),
	)
	return nil
}
