package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/dispatch"
	"github.com/dockwise/scheduling-portal/internal/domain"
	"github.com/dockwise/scheduling-portal/internal/queue"
	"github.com/dockwise/scheduling-portal/internal/worker"
)

type stubHandler struct {
	calls atomic.Int64
	err   error
}

func (h *stubHandler) Handle(context.Context, *domain.NotificationJob) error {
	h.calls.Add(1)
	return h.err
}

func newDispatcher(realtime dispatch.Handler) *dispatch.Dispatcher {
	return dispatch.New(&stubHandler{}, realtime, &stubHandler{}, zap.NewNop())
}

func enqueueRealtimeJob(t *testing.T, lane queue.Lane) domain.NotificationJob {
	t.Helper()
	j, err := domain.NewRealtimeJob(1, domain.RealtimePayload{EventType: "schedule_updated"})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	if err := lane.Enqueue(context.Background(), j, domain.PriorityNormal.Weight()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return j
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWorker_CompletesSuccessfulJob(t *testing.T) {
	lane := queue.NewMemoryLane("notifications", domain.NormalRetryPolicy(), domain.NormalRetention())
	h := &stubHandler{}
	w := worker.New(lane, newDispatcher(h), 5, zap.NewNop(), worker.MetricHooks{})

	enqueueRealtimeJob(t, lane)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	waitFor(t, time.Second, func() bool { return len(lane.Completed()) == 1 },
		"job never completed")
	if h.calls.Load() != 1 {
		t.Fatalf("expected exactly one handler call, got %d", h.calls.Load())
	}

	cancel()
	<-done
}

func TestWorker_RetryExhaustionNormalQueue(t *testing.T) {
	// Normal policy shape (3 attempts) with a tiny delay so the test runs fast.
	policy := domain.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond}
	lane := queue.NewMemoryLane("notifications", policy, domain.NormalRetention())

	h := &stubHandler{err: errors.New("always fails")}
	var deadLettered atomic.Int64
	w := worker.New(lane, newDispatcher(h), 5, zap.NewNop(), worker.MetricHooks{
		OnDeadLettered: func(string, domain.JobKind) { deadLettered.Add(1) },
	})

	enqueueRealtimeJob(t, lane)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	waitFor(t, 2*time.Second, func() bool { return len(lane.Failed()) == 1 },
		"job never dead-lettered")
	cancel()
	<-done

	if got := h.calls.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts on the normal queue, got %d", got)
	}
	if deadLettered.Load() != 1 {
		t.Fatalf("expected one dead-letter hook call, got %d", deadLettered.Load())
	}
	if len(lane.Completed()) != 0 {
		t.Fatal("a dead-lettered job must not be recorded as completed")
	}
}

func TestWorker_RetryExhaustionUrgentQueue(t *testing.T) {
	policy := domain.RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond}
	lane := queue.NewMemoryLane("urgent-notifications", policy, domain.UrgentRetention())

	h := &stubHandler{err: errors.New("always fails")}
	w := worker.New(lane, newDispatcher(h), 10, zap.NewNop(), worker.MetricHooks{})

	enqueueRealtimeJob(t, lane)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	waitFor(t, 2*time.Second, func() bool { return len(lane.Failed()) == 1 },
		"job never dead-lettered")
	cancel()
	<-done

	if got := h.calls.Load(); got != 5 {
		t.Fatalf("expected exactly 5 attempts on the urgent queue, got %d", got)
	}
}

func TestWorker_FailureIsolation(t *testing.T) {
	// One job that always fails must not block a healthy sibling.
	policy := domain.RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}
	lane := queue.NewMemoryLane("notifications", policy, domain.NormalRetention())

	failing, _ := domain.NewRealtimeJob(1, domain.RealtimePayload{EventType: "poison"})
	healthy, _ := domain.NewRealtimeJob(2, domain.RealtimePayload{EventType: "fine"})

	h := &selectiveHandler{failEventType: "poison"}
	w := worker.New(lane, newDispatcher(h), 5, zap.NewNop(), worker.MetricHooks{})

	ctx, cancel := context.WithCancel(context.Background())
	_ = lane.Enqueue(ctx, failing, 5)
	_ = lane.Enqueue(ctx, healthy, 5)

	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()

	waitFor(t, 2*time.Second, func() bool {
		return len(lane.Completed()) == 1 && len(lane.Failed()) == 1
	}, "expected one completed and one dead-lettered job")
	cancel()
	<-done

	if lane.Completed()[0].Job.ID != healthy.ID {
		t.Fatal("the healthy job should be the completed one")
	}
	if lane.Failed()[0].Job.ID != failing.ID {
		t.Fatal("the poison job should be the dead-lettered one")
	}
}

type selectiveHandler struct {
	failEventType string
}

func (h *selectiveHandler) Handle(_ context.Context, job *domain.NotificationJob) error {
	if job.Realtime != nil && job.Realtime.EventType == h.failEventType {
		return errors.New("poison job")
	}
	return nil
}

func TestPool_NoLanesIsANoOp(t *testing.T) {
	pool := worker.NewPool(&queue.Pair{}, newDispatcher(&stubHandler{}), zap.NewNop(), worker.MetricHooks{})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()
	pool.Wait() // must return immediately without panicking
}
