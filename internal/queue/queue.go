package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/domain"
)

// Queue lane names. Stable identifiers used by dashboards; do not rename.
const (
	NormalQueueName = "notifications"
	UrgentQueueName = "urgent-notifications"
)

// Lane is one priority lane of the queue pair. The retry policy belongs to
// the lane, not to individual jobs: Retry applies the lane's backoff and
// dead-letters the envelope once attempts are exhausted.
type Lane interface {
	Name() string
	Policy() domain.RetryPolicy

	// Enqueue places a job on the lane with the given scheduling weight.
	Enqueue(ctx context.Context, job domain.NotificationJob, weight int) error

	// Dequeue blocks until a job is ready or ctx is cancelled.
	// Returns (nil, false) on cancellation.
	Dequeue(ctx context.Context) (*Envelope, bool)

	// Complete records a successful run, subject to the retention cap.
	Complete(ctx context.Context, env *Envelope) error

	// Retry records a failed run. It either schedules the envelope for
	// redelivery with exponential backoff or, when the lane's MaxAttempts
	// is exhausted, moves it to the failed set and reports deadLettered=true.
	Retry(ctx context.Context, env *Envelope, cause error) (deadLettered bool, err error)

	// Depths returns the number of ready, delayed, and dead-lettered jobs.
	Depths(ctx context.Context) (ready, delayed, failed int64, err error)

	// Close stops Dequeue from handing out further jobs.
	Close() error
}

// Pair holds the two independently configured lanes. Both are nil when no
// broker is configured; callers must check Enabled before touching a lane.
// There is no periodic recheck: broker availability is decided once at
// startup and holds for the life of the process.
type Pair struct {
	Normal Lane
	Urgent Lane
}

// NewPair builds the two Redis-backed lanes over the shared broker
// connection, or an empty pair when the broker is absent.
func NewPair(b *broker.Broker, pollInterval time.Duration, logger *zap.Logger) *Pair {
	if !b.Available() {
		return &Pair{}
	}
	return &Pair{
		Normal: NewRedisLane(b, NormalQueueName,
			domain.NormalRetryPolicy(), domain.NormalRetention(), pollInterval,
			logger.With(zap.String("queue", NormalQueueName))),
		Urgent: NewRedisLane(b, UrgentQueueName,
			domain.UrgentRetryPolicy(), domain.UrgentRetention(), pollInterval,
			logger.With(zap.String("queue", UrgentQueueName))),
	}
}

// Enabled reports whether the lanes exist at all.
func (p *Pair) Enabled() bool {
	return p.Normal != nil && p.Urgent != nil
}

// ForPriority selects the lane matching the caller's requested priority.
func (p *Pair) ForPriority(pr domain.Priority) Lane {
	if pr == domain.PriorityUrgent {
		return p.Urgent
	}
	return p.Normal
}

// Close closes both lanes, each independently guarded.
func (p *Pair) Close() error {
	var firstErr error
	for _, lane := range []Lane{p.Normal, p.Urgent} {
		if lane == nil {
			continue
		}
		if err := lane.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
