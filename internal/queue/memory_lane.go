package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// MemoryLane is a hand-written, in-memory Lane used in unit tests, mirroring
// the Redis lane's semantics (weight-then-FIFO ordering, delayed retries,
// retention caps) without a broker. No mock-generation library needed.
type MemoryLane struct {
	name      string
	policy    domain.RetryPolicy
	retention domain.RetentionPolicy

	mu      sync.Mutex
	seq     int64
	ready   []memoryEntry
	delayed []delayedEntry
	done    []*Envelope
	failed  []*Envelope
	closed  chan struct{}

	// EnqueueErr simulates a broker failure on enqueue.
	EnqueueErr error
}

type memoryEntry struct {
	env *Envelope
	seq int64
}

type delayedEntry struct {
	env     *Envelope
	readyAt time.Time
}

func NewMemoryLane(name string, policy domain.RetryPolicy, retention domain.RetentionPolicy) *MemoryLane {
	return &MemoryLane{
		name:      name,
		policy:    policy,
		retention: retention,
		closed:    make(chan struct{}),
	}
}

func (l *MemoryLane) Name() string               { return l.name }
func (l *MemoryLane) Policy() domain.RetryPolicy { return l.policy }

func (l *MemoryLane) Enqueue(_ context.Context, job domain.NotificationJob, weight int) error {
	if l.EnqueueErr != nil {
		return l.EnqueueErr
	}
	if err := job.Validate(); err != nil {
		return err
	}
	l.push(newEnvelope(job, weight))
	return nil
}

func (l *MemoryLane) push(env *Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.ready = append(l.ready, memoryEntry{env: env, seq: l.seq})
	sort.SliceStable(l.ready, func(i, j int) bool {
		if l.ready[i].env.Weight != l.ready[j].env.Weight {
			return l.ready[i].env.Weight > l.ready[j].env.Weight
		}
		return l.ready[i].seq < l.ready[j].seq
	})
}

func (l *MemoryLane) Dequeue(ctx context.Context) (*Envelope, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-l.closed:
			return nil, false
		default:
		}

		if env := l.pop(); env != nil {
			return env, true
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-l.closed:
			return nil, false
		case <-time.After(time.Millisecond):
		}
	}
}

func (l *MemoryLane) pop() *Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	remaining := l.delayed[:0]
	for _, d := range l.delayed {
		if d.readyAt.After(now) {
			remaining = append(remaining, d)
			continue
		}
		l.seq++
		l.ready = append(l.ready, memoryEntry{env: d.env, seq: l.seq})
	}
	l.delayed = remaining

	if len(l.ready) == 0 {
		return nil
	}
	sort.SliceStable(l.ready, func(i, j int) bool {
		if l.ready[i].env.Weight != l.ready[j].env.Weight {
			return l.ready[i].env.Weight > l.ready[j].env.Weight
		}
		return l.ready[i].seq < l.ready[j].seq
	})
	env := l.ready[0].env
	l.ready = l.ready[1:]
	return env
}

func (l *MemoryLane) Complete(_ context.Context, env *Envelope) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = append([]*Envelope{env}, l.done...)
	if len(l.done) > l.retention.KeepCompleted {
		l.done = l.done[:l.retention.KeepCompleted]
	}
	return nil
}

func (l *MemoryLane) Retry(_ context.Context, env *Envelope, cause error) (bool, error) {
	env.Attempt++
	env.LastError = cause.Error()

	l.mu.Lock()
	defer l.mu.Unlock()

	if env.Attempt >= l.policy.MaxAttempts {
		l.failed = append([]*Envelope{env}, l.failed...)
		if len(l.failed) > l.retention.KeepFailed {
			l.failed = l.failed[:l.retention.KeepFailed]
		}
		return true, nil
	}

	l.delayed = append(l.delayed, delayedEntry{
		env:     env,
		readyAt: time.Now().Add(l.policy.Backoff(env.Attempt)),
	})
	return false, nil
}

func (l *MemoryLane) Depths(context.Context) (int64, int64, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.ready)), int64(len(l.delayed)), int64(len(l.failed)), nil
}

// Completed returns a copy of the completed set, newest first.
func (l *MemoryLane) Completed() []*Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Envelope(nil), l.done...)
}

// Failed returns a copy of the dead-letter set, newest first.
func (l *MemoryLane) Failed() []*Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Envelope(nil), l.failed...)
}

func (l *MemoryLane) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

var _ Lane = (*MemoryLane)(nil)
