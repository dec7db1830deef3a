package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dockwise/scheduling-portal/internal/domain"
	"github.com/dockwise/scheduling-portal/internal/queue"
)

func testJob(t *testing.T, tenantID int64) domain.NotificationJob {
	t.Helper()
	j, err := domain.NewRealtimeJob(tenantID, domain.RealtimePayload{
		EventType: "schedule_updated",
		Data:      map[string]any{"schedule_id": 46},
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	return j
}

func TestMemoryLane_WeightOrdering(t *testing.T) {
	lane := queue.NewMemoryLane("test", domain.NormalRetryPolicy(), domain.NormalRetention())
	ctx := context.Background()

	low := testJob(t, 1)
	high := testJob(t, 2)

	if err := lane.Enqueue(ctx, low, domain.PriorityNormal.Weight()); err != nil {
		t.Fatalf("enqueue low: %v", err)
	}
	if err := lane.Enqueue(ctx, high, domain.PriorityUrgent.Weight()); err != nil {
		t.Fatalf("enqueue high: %v", err)
	}

	env, ok := lane.Dequeue(ctx)
	if !ok || env.Job.ID != high.ID {
		t.Fatalf("expected the heavier job first, got %+v", env)
	}
	env, ok = lane.Dequeue(ctx)
	if !ok || env.Job.ID != low.ID {
		t.Fatalf("expected the lighter job second, got %+v", env)
	}
}

func TestMemoryLane_FIFOWithinWeight(t *testing.T) {
	lane := queue.NewMemoryLane("test", domain.NormalRetryPolicy(), domain.NormalRetention())
	ctx := context.Background()

	first := testJob(t, 1)
	second := testJob(t, 2)
	_ = lane.Enqueue(ctx, first, 5)
	_ = lane.Enqueue(ctx, second, 5)

	env, _ := lane.Dequeue(ctx)
	if env.Job.ID != first.ID {
		t.Fatal("expected FIFO order for equal weights")
	}
}

func TestMemoryLane_RejectsInvalidJob(t *testing.T) {
	lane := queue.NewMemoryLane("test", domain.NormalRetryPolicy(), domain.NormalRetention())

	bad := testJob(t, 1)
	bad.Kind = domain.KindEmail // payload is realtime: mismatch
	if err := lane.Enqueue(context.Background(), bad, 5); err != domain.ErrPayloadMismatch {
		t.Fatalf("expected ErrPayloadMismatch, got %v", err)
	}
}

func TestMemoryLane_RetrySchedulesWithBackoffThenDeadLetters(t *testing.T) {
	policy := domain.RetryPolicy{MaxAttempts: 3, InitialDelay: 5 * time.Millisecond}
	lane := queue.NewMemoryLane("test", policy, domain.NormalRetention())
	ctx := context.Background()

	_ = lane.Enqueue(ctx, testJob(t, 1), 5)
	cause := errors.New("provider down")

	env, _ := lane.Dequeue(ctx)

	// Attempts 1 and 2 fail: envelope goes to the delayed set, not failed.
	for i := 0; i < 2; i++ {
		dead, err := lane.Retry(ctx, env, cause)
		if err != nil || dead {
			t.Fatalf("attempt %d: dead=%v err=%v", i+1, dead, err)
		}
		_, delayed, failed, _ := lane.Depths(ctx)
		if delayed != 1 || failed != 0 {
			t.Fatalf("attempt %d: delayed=%d failed=%d", i+1, delayed, failed)
		}

		var ok bool
		dequeueCtx, cancel := context.WithTimeout(ctx, time.Second)
		env, ok = lane.Dequeue(dequeueCtx)
		cancel()
		if !ok {
			t.Fatalf("attempt %d: delayed job never became ready", i+1)
		}
	}

	// Third failure exhausts MaxAttempts=3.
	dead, err := lane.Retry(ctx, env, cause)
	if err != nil || !dead {
		t.Fatalf("expected dead-letter on final attempt, dead=%v err=%v", dead, err)
	}

	failed := lane.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected 1 dead-lettered envelope, got %d", len(failed))
	}
	if failed[0].Attempt != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", failed[0].Attempt)
	}
	if failed[0].LastError != "provider down" {
		t.Fatalf("expected failure cause to be retained, got %q", failed[0].LastError)
	}
}

func TestMemoryLane_CompletionRetentionCap(t *testing.T) {
	lane := queue.NewMemoryLane("test",
		domain.NormalRetryPolicy(),
		domain.RetentionPolicy{KeepCompleted: 2, KeepFailed: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = lane.Enqueue(ctx, testJob(t, int64(i+1)), 5)
		env, _ := lane.Dequeue(ctx)
		_ = lane.Complete(ctx, env)
	}

	if got := len(lane.Completed()); got != 2 {
		t.Fatalf("expected retention to cap completed at 2, got %d", got)
	}
}

func TestMemoryLane_DequeueStopsOnCancel(t *testing.T) {
	lane := queue.NewMemoryLane("test", domain.NormalRetryPolicy(), domain.NormalRetention())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		_, ok := lane.Dequeue(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after cancellation")
	}
}

func TestPair_ForPriority(t *testing.T) {
	normal := queue.NewMemoryLane(queue.NormalQueueName, domain.NormalRetryPolicy(), domain.NormalRetention())
	urgent := queue.NewMemoryLane(queue.UrgentQueueName, domain.UrgentRetryPolicy(), domain.UrgentRetention())
	pair := &queue.Pair{Normal: normal, Urgent: urgent}

	if !pair.Enabled() {
		t.Fatal("expected pair with both lanes to be enabled")
	}
	if pair.ForPriority(domain.PriorityUrgent) != queue.Lane(urgent) {
		t.Fatal("urgent priority must select the urgent lane")
	}
	if pair.ForPriority(domain.PriorityNormal) != queue.Lane(normal) {
		t.Fatal("normal priority must select the normal lane")
	}

	empty := &queue.Pair{}
	if empty.Enabled() {
		t.Fatal("expected empty pair to be disabled")
	}
	if err := empty.Close(); err != nil {
		t.Fatalf("closing an empty pair must be a no-op, got %v", err)
	}
}
