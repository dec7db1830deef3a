package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// Handler executes the side effect for one job kind.
// A returned error is how the worker learns a retry is needed, so handlers
// must never swallow delivery failures — and must be safe to re-run
// (delivery is at-least-once, not exactly-once).
type Handler interface {
	Handle(ctx context.Context, job *domain.NotificationJob) error
}

// Dispatcher routes a job to exactly one handler based on its kind.
// It logs entry and exit with the job's correlation fields and propagates
// handler errors unmodified.
type Dispatcher struct {
	email    Handler
	realtime Handler
	push     Handler
	logger   *zap.Logger
}

func New(email, realtime, push Handler, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{email: email, realtime: realtime, push: push, logger: logger}
}

// Dispatch invokes the handler matching job.Kind. A job with an unknown kind
// should never have been enqueued, so it fails immediately without reaching
// any handler.
func (d *Dispatcher) Dispatch(ctx context.Context, job *domain.NotificationJob) error {
	log := d.logger.With(
		zap.String("job_id", job.ID),
		zap.Int64("tenant_id", job.TenantID),
		zap.String("kind", string(job.Kind)),
	)

	var h Handler
	switch job.Kind {
	case domain.KindEmail:
		h = d.email
	case domain.KindRealtime:
		h = d.realtime
	case domain.KindPush:
		h = d.push
	default:
		return fmt.Errorf("dispatch job %s: %w", job.ID, domain.ErrUnknownJobKind)
	}

	log.Info("dispatching job")
	start := time.Now()

	if err := h.Handle(ctx, job); err != nil {
		log.Warn("job handler failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}

	log.Info("job handled", zap.Duration("elapsed", time.Since(start)))
	return nil
}
