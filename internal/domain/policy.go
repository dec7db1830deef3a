package domain

import "time"

// Priority selects which of the two queue lanes a job lands on.
// Urgent trades broker load for latency: more concurrency, more retries,
// shorter initial backoff.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// Weight is the numeric scheduling weight attached to each job at enqueue
// time. Higher weights are served first within a lane.
func (p Priority) Weight() int {
	if p == PriorityUrgent {
		return 10
	}
	return 5
}

// Concurrency is the bounded number of jobs a lane's worker runs at once.
func (p Priority) Concurrency() int {
	if p == PriorityUrgent {
		return 10
	}
	return 5
}

// Urgency is the caller-facing severity of an in-app notification.
// It is transient: embedded in the realtime fanout payload, never persisted.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyWarning  Urgency = "warning"
	UrgencyInfo     Urgency = "info"
)

// QueuePriority maps urgency onto the two-lane priority model:
// critical and urgent take the urgent lane, everything else the normal one.
func (u Urgency) QueuePriority() Priority {
	switch u {
	case UrgencyCritical, UrgencyUrgent:
		return PriorityUrgent
	}
	return PriorityNormal
}

// RetryPolicy is a first-class per-queue value, constructed explicitly so
// the policy is visible and testable rather than buried in queue-library
// defaults. Backoff is exponential from InitialDelay.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// Backoff returns the delay before the next attempt, given how many
// attempts have already failed (1-based).
//
//	attempt 1 → InitialDelay
//	attempt 2 → 2 × InitialDelay
//	attempt N → 2^(N-1) × InitialDelay
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.InitialDelay << uint(attempt-1)
}

func NormalRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: 2000 * time.Millisecond}
}

func UrgentRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialDelay: 1000 * time.Millisecond}
}

// RetentionPolicy bounds how many completed/failed job records a queue keeps
// in the broker. This bounds storage, not correctness.
type RetentionPolicy struct {
	KeepCompleted int
	KeepFailed    int
}

func NormalRetention() RetentionPolicy {
	return RetentionPolicy{KeepCompleted: 100, KeepFailed: 50}
}

func UrgentRetention() RetentionPolicy {
	return RetentionPolicy{KeepCompleted: 50, KeepFailed: 25}
}
