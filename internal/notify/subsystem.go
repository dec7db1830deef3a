package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/dispatch"
	"github.com/dockwise/scheduling-portal/internal/domain"
	"github.com/dockwise/scheduling-portal/internal/metrics"
	"github.com/dockwise/scheduling-portal/internal/queue"
	"github.com/dockwise/scheduling-portal/internal/repository"
	"github.com/dockwise/scheduling-portal/internal/worker"
)

// Strategy is how the subsystem executes jobs. It is decided exactly once at
// construction from broker availability and never re-evaluated per call, so
// a flapping broker cannot split traffic between queued and inline paths.
type Strategy string

const (
	// StrategyQueued pushes jobs to the priority lanes for the workers.
	StrategyQueued Strategy = "queued"
	// StrategyDirect executes the handler inline and returns its result;
	// this is the degraded mode used when no broker is configured.
	StrategyDirect Strategy = "direct"
)

// Subsystem is the explicit context object other subsystems call into.
// Built once at process startup and passed by reference; owns the worker
// pool and the shutdown ordering of everything beneath it.
type Subsystem struct {
	strategy   Strategy
	broker     *broker.Broker
	pair       *queue.Pair
	dispatcher *dispatch.Dispatcher
	repo       repository.NotificationRepository
	pool       *worker.Pool
	metrics    *metrics.Metrics
	logger     *zap.Logger

	cancelWorkers context.CancelFunc
}

// New wires the subsystem. metrics may be nil (no instrumentation).
func New(
	b *broker.Broker,
	pair *queue.Pair,
	dispatcher *dispatch.Dispatcher,
	repo repository.NotificationRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Subsystem {
	strategy := StrategyDirect
	if pair.Enabled() {
		strategy = StrategyQueued
	}

	hooks := worker.MetricHooks{}
	if m != nil {
		hooks.OnCompleted, hooks.OnFailed, hooks.OnDeadLettered = m.WorkerHooks()
	}

	s := &Subsystem{
		strategy:   strategy,
		broker:     b,
		pair:       pair,
		dispatcher: dispatcher,
		repo:       repo,
		metrics:    m,
		logger:     logger,
	}
	if strategy == StrategyQueued {
		s.pool = worker.NewPool(pair, dispatcher, logger, hooks)
	}

	logger.Info("notification subsystem initialised", zap.String("strategy", string(strategy)))
	return s
}

// Strategy reports the delivery strategy decided at construction.
func (s *Subsystem) Strategy() Strategy { return s.strategy }

// Start launches the workers (queued strategy only) and the queue depth
// sampler. Cancelling ctx stops them; Shutdown waits for in-flight jobs.
func (s *Subsystem) Start(ctx context.Context) {
	if s.strategy != StrategyQueued {
		return
	}
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelWorkers = cancel
	s.pool.Start(workerCtx)
	if s.metrics != nil {
		go s.sampleDepths(workerCtx)
	}
}

func (s *Subsystem) sampleDepths(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ready, _, _, err := s.pair.Normal.Depths(ctx); err == nil {
				s.metrics.QueueDepthNormal.Set(float64(ready))
			}
			if ready, _, _, err := s.pair.Urgent.Depths(ctx); err == nil {
				s.metrics.QueueDepthUrgent.Set(float64(ready))
			}
		}
	}
}

// JobOptions carries the caller-selected priority and optional correlation
// identifiers for an enqueued job.
type JobOptions struct {
	Priority   domain.Priority
	ScheduleID *int64
	UserID     *int64
}

func (o JobOptions) priority() domain.Priority {
	if o.Priority.IsValid() {
		return o.Priority
	}
	return domain.PriorityNormal
}

// EnqueueEmail queues an email job, or — in degraded mode — sends the email
// inline and returns only once the send attempt has completed.
// When the payload's event tag is unset the legacy field precedence decides
// the variant (see domain.ClassifyEmailEvent).
func (s *Subsystem) EnqueueEmail(ctx context.Context, tenantID int64, payload domain.EmailPayload, opts JobOptions) error {
	if payload.Event == "" {
		payload.Event = domain.ClassifyEmailEvent(payload)
	}
	job, err := domain.NewEmailJob(tenantID, payload)
	if err != nil {
		return err
	}
	return s.submit(ctx, job, opts)
}

// EnqueueRealtime queues a tenant fanout job.
func (s *Subsystem) EnqueueRealtime(ctx context.Context, tenantID int64, payload domain.RealtimePayload, opts JobOptions) error {
	job, err := domain.NewRealtimeJob(tenantID, payload)
	if err != nil {
		return err
	}
	return s.submit(ctx, job, opts)
}

// EnqueuePush queues a mobile push job. The push handler is a stub, so in
// both strategies this is currently log-only delivery.
func (s *Subsystem) EnqueuePush(ctx context.Context, tenantID int64, payload domain.PushPayload, opts JobOptions) error {
	job, err := domain.NewPushJob(tenantID, payload)
	if err != nil {
		return err
	}
	return s.submit(ctx, job, opts)
}

func (s *Subsystem) submit(ctx context.Context, job domain.NotificationJob, opts JobOptions) error {
	job.ScheduleID = firstNonNil(opts.ScheduleID, job.ScheduleID)
	job.UserID = opts.UserID

	if s.strategy == StrategyDirect {
		// Full synchronous execution: the caller sees the handler's outcome.
		return s.dispatcher.Dispatch(ctx, &job)
	}

	pr := opts.priority()
	lane := s.pair.ForPriority(pr)
	if err := lane.Enqueue(ctx, job, pr.Weight()); err != nil {
		s.logger.Error("enqueue failed",
			zap.String("job_id", job.ID),
			zap.String("kind", string(job.Kind)),
			zap.String("queue", lane.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("enqueue %s job: %w", job.Kind, err)
	}
	return nil
}

func firstNonNil(a, b *int64) *int64 {
	if a != nil {
		return a
	}
	return b
}

// CreateNotificationInput is the argument set for CreateAndQueueNotification.
type CreateNotificationInput struct {
	TenantID   int64
	UserID     int64
	Title      string
	Message    string
	Type       string
	Urgency    domain.Urgency
	ScheduleID *int64
	Metadata   map[string]any
}

// CreateAndQueueNotification persists a notification row and queues its
// realtime fanout. The row is created exactly once here; retries of the
// fanout job re-broadcast but never re-persist. Urgency critical/urgent maps
// to the urgent lane, everything else to normal.
func (s *Subsystem) CreateAndQueueNotification(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:                uuid.New().String(),
		TenantID:          in.TenantID,
		UserID:            in.UserID,
		Title:             in.Title,
		Message:           in.Message,
		Type:              in.Type,
		RelatedScheduleID: in.ScheduleID,
		CreatedAt:         time.Now().UTC(),
	}

	log := s.logger.With(
		zap.Int64("tenant_id", in.TenantID),
		zap.Int64("user_id", in.UserID),
		zap.String("notification_id", n.ID),
		zap.String("urgency", string(in.Urgency)),
		zap.String("type", in.Type),
	)

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error("failed to persist notification", zap.Error(err))
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	payload := domain.RealtimePayload{
		EventType: "notification_created",
		Data: map[string]any{
			"notification": n,
			// Transient fields: part of the fanout only, never persisted.
			"urgency":  string(in.Urgency),
			"metadata": in.Metadata,
		},
	}

	userID := in.UserID
	err := s.EnqueueRealtime(ctx, in.TenantID, payload, JobOptions{
		Priority:   in.Urgency.QueuePriority(),
		ScheduleID: in.ScheduleID,
		UserID:     &userID,
	})
	if err != nil {
		log.Error("notification persisted but fanout enqueue failed", zap.Error(err))
		return n, err
	}

	log.Info("notification created and fanout queued")
	return n, nil
}

// Shutdown tears the subsystem down in a fixed order: workers first, then
// queues, then the broker connection. Every step is independently guarded so
// partial initialisation — including a process that never had a broker —
// shuts down without error. Jobs mid-flight in a worker are given until ctx
// expires to finish; they are not drained or requeued.
func (s *Subsystem) Shutdown(ctx context.Context) error {
	if s.cancelWorkers != nil {
		s.cancelWorkers()
	}
	if s.pool != nil {
		done := make(chan struct{})
		go func() {
			s.pool.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("shutdown deadline reached with jobs still in flight")
		}
	}

	if err := s.pair.Close(); err != nil {
		s.logger.Warn("queue close error", zap.Error(err))
	}

	if err := s.broker.Shutdown(); err != nil {
		return err
	}

	s.logger.Info("notification subsystem stopped")
	return nil
}
