package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/dispatch"
	"github.com/dockwise/scheduling-portal/internal/domain"
	"github.com/dockwise/scheduling-portal/internal/queue"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the worker constructor signature clean.
type MetricHooks struct {
	OnCompleted    func(queue string, kind domain.JobKind, latency time.Duration)
	OnFailed       func(queue string, kind domain.JobKind)
	OnDeadLettered func(queue string, kind domain.JobKind)
}

func (h *MetricHooks) fillNoOps() {
	if h.OnCompleted == nil {
		h.OnCompleted = func(string, domain.JobKind, time.Duration) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(string, domain.JobKind) {}
	}
	if h.OnDeadLettered == nil {
		h.OnDeadLettered = func(string, domain.JobKind) {}
	}
}

// Worker is the bounded-concurrency consumer loop for one queue lane.
// It dequeues envelopes, routes them through the dispatcher, and on failure
// hands the envelope back to the lane so its retry policy decides between
// backoff redelivery and the dead-letter set.
type Worker struct {
	lane        queue.Lane
	dispatcher  *dispatch.Dispatcher
	concurrency int
	logger      *zap.Logger
	hooks       MetricHooks

	wg sync.WaitGroup
}

func New(lane queue.Lane, dispatcher *dispatch.Dispatcher, concurrency int, logger *zap.Logger, hooks MetricHooks) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	hooks.fillNoOps()
	return &Worker{
		lane:        lane,
		dispatcher:  dispatcher,
		concurrency: concurrency,
		logger:      logger,
		hooks:       hooks,
	}
}

// Run blocks until ctx is cancelled. At most `concurrency` jobs execute at
// once; the semaphore is acquired before dequeueing so a full worker never
// pulls a job it cannot start.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started",
		zap.String("queue", w.lane.Name()),
		zap.Int("concurrency", w.concurrency),
	)

	sem := make(chan struct{}, w.concurrency)
	for {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			w.logger.Info("worker stopping", zap.String("queue", w.lane.Name()))
			w.wg.Wait()
			return
		}

		env, ok := w.lane.Dequeue(ctx)
		if !ok {
			<-sem
			w.logger.Info("worker stopping", zap.String("queue", w.lane.Name()))
			w.wg.Wait()
			return
		}

		w.wg.Add(1)
		go func(env *queue.Envelope) {
			defer w.wg.Done()
			defer func() { <-sem }()
			w.process(ctx, env)
		}(env)
	}
}

func (w *Worker) process(ctx context.Context, env *queue.Envelope) {
	start := time.Now()
	job := &env.Job
	log := w.logger.With(
		zap.String("queue", w.lane.Name()),
		zap.String("job_id", job.ID),
		zap.Int64("tenant_id", job.TenantID),
		zap.String("kind", string(job.Kind)),
	)

	err := w.dispatcher.Dispatch(ctx, job)
	if err == nil {
		if cErr := w.lane.Complete(ctx, env); cErr != nil {
			log.Warn("failed to record completion", zap.Error(cErr))
		}
		w.hooks.OnCompleted(w.lane.Name(), job.Kind, time.Since(start))
		return
	}

	log.Warn("job failed", zap.Int("attempt", env.Attempt+1), zap.Error(err))
	w.hooks.OnFailed(w.lane.Name(), job.Kind)

	deadLettered, rErr := w.lane.Retry(ctx, env, err)
	if rErr != nil {
		log.Error("failed to hand job back to queue", zap.Error(rErr))
		return
	}
	if deadLettered {
		w.hooks.OnDeadLettered(w.lane.Name(), job.Kind)
	}
}

// Pool runs one worker per existing queue lane: 5 concurrent jobs on the
// normal lane, 10 on the urgent one.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

func NewPool(pair *queue.Pair, dispatcher *dispatch.Dispatcher, logger *zap.Logger, hooks MetricHooks) *Pool {
	p := &Pool{}
	if pair.Normal != nil {
		p.workers = append(p.workers, New(
			pair.Normal, dispatcher, domain.PriorityNormal.Concurrency(),
			logger.With(zap.String("worker", pair.Normal.Name())), hooks))
	}
	if pair.Urgent != nil {
		p.workers = append(p.workers, New(
			pair.Urgent, dispatcher, domain.PriorityUrgent.Concurrency(),
			logger.With(zap.String("worker", pair.Urgent.Name())), hooks))
	}
	return p
}

// Start launches all workers as goroutines.
// Cancelling ctx triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight jobs finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
