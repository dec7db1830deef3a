package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/domain"
)

// RedisLane stores one lane in Redis:
//
//	dockq:{name}:ready    sorted set, score packs weight then FIFO order
//	dockq:{name}:delayed  sorted set, score = ready-at unix millis
//	dockq:{name}:done     list of the last KeepCompleted envelopes
//	dockq:{name}:failed   list of the last KeepFailed dead-lettered envelopes
//	dockq:{name}:seq      monotonic counter for FIFO tie-breaking
//
// Ready jobs are popped highest-score first, so a larger weight always wins
// and equal weights drain roughly oldest-first. Delayed retries are promoted
// back to the ready set by the dequeue loop, which means queued and delayed
// jobs survive a process restart; only a job mid-flight in a worker at exit
// is lost to this process (it was never acked, so the failed/done records
// simply never appear).
type RedisLane struct {
	broker    *broker.Broker
	name      string
	policy    domain.RetryPolicy
	retention domain.RetentionPolicy
	poll      time.Duration
	logger    *zap.Logger

	closed chan struct{}
}

func NewRedisLane(
	b *broker.Broker,
	name string,
	policy domain.RetryPolicy,
	retention domain.RetentionPolicy,
	pollInterval time.Duration,
	logger *zap.Logger,
) *RedisLane {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	return &RedisLane{
		broker:    b,
		name:      name,
		policy:    policy,
		retention: retention,
		poll:      pollInterval,
		logger:    logger,
		closed:    make(chan struct{}),
	}
}

func (l *RedisLane) Name() string               { return l.name }
func (l *RedisLane) Policy() domain.RetryPolicy { return l.policy }

func (l *RedisLane) key(suffix string) string {
	return "dockq:" + l.name + ":" + suffix
}

// score packs the priority weight and a FIFO sequence into one float.
// Weight dominates; within a weight, earlier sequence numbers score higher
// so ZPOPMAX drains them first. The 2^40 sequence space stays well inside
// float64's 53-bit integer precision for any realistic weight.
func score(weight int, seq int64) float64 {
	return float64(weight)*float64(1<<40) - float64(seq)
}

func (l *RedisLane) Enqueue(ctx context.Context, job domain.NotificationJob, weight int) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return l.push(ctx, newEnvelope(job, weight))
}

func (l *RedisLane) push(ctx context.Context, env *Envelope) error {
	client := l.broker.Client()
	if client == nil {
		return domain.ErrBrokerUnavailable
	}

	member, err := env.encode()
	if err != nil {
		return fmt.Errorf("encode job %s: %w", env.Job.ID, err)
	}

	seq, err := client.Incr(ctx, l.key("seq")).Result()
	if err != nil {
		return fmt.Errorf("next sequence for %s: %w", l.name, err)
	}

	if err := client.ZAdd(ctx, l.key("ready"), redis.Z{
		Score:  score(env.Weight, seq),
		Member: member,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue on %s: %w", l.name, err)
	}
	return nil
}

// Dequeue polls the ready set, promoting due delayed retries first.
// It returns (nil, false) when ctx is cancelled or the lane is closed.
func (l *RedisLane) Dequeue(ctx context.Context) (*Envelope, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-l.closed:
			return nil, false
		default:
		}

		l.promoteDue(ctx)

		env, err := l.popReady(ctx)
		if err != nil {
			l.logger.Warn("dequeue error", zap.Error(err))
		} else if env != nil {
			return env, true
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-l.closed:
			return nil, false
		case <-time.After(l.poll):
		}
	}
}

func (l *RedisLane) popReady(ctx context.Context) (*Envelope, error) {
	client := l.broker.Client()
	if client == nil {
		return nil, domain.ErrBrokerUnavailable
	}

	members, err := client.ZPopMax(ctx, l.key("ready"), 1).Result()
	if err != nil || len(members) == 0 {
		return nil, err
	}

	raw, ok := members[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected member type %T on %s", members[0].Member, l.name)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		// A malformed envelope would poison the lane if requeued; park it in
		// the failed list for inspection instead.
		l.logger.Error("dropping undecodable envelope to failed set", zap.Error(err))
		l.pushFailed(ctx, raw)
		return nil, nil
	}
	return env, nil
}

// promoteDue moves delayed retries whose backoff has elapsed back onto the
// ready set. Same poll-and-promote shape Redis-backed queues use for
// scheduled work; errors are logged and retried on the next tick.
func (l *RedisLane) promoteDue(ctx context.Context) {
	client := l.broker.Client()
	if client == nil {
		return
	}

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	due, err := client.ZRangeByScore(ctx, l.key("delayed"), &redis.ZRangeBy{
		Min: "-inf", Max: now, Count: 100,
	}).Result()
	if err != nil || len(due) == 0 {
		if err != nil {
			l.logger.Warn("promote poll error", zap.Error(err))
		}
		return
	}

	for _, raw := range due {
		// Remove first so two workers polling the same lane cannot both
		// promote the same member.
		removed, err := client.ZRem(ctx, l.key("delayed"), raw).Result()
		if err != nil || removed == 0 {
			continue
		}

		env, err := decodeEnvelope(raw)
		if err != nil {
			l.logger.Error("dropping undecodable delayed envelope", zap.Error(err))
			l.pushFailed(ctx, raw)
			continue
		}
		if err := l.push(ctx, env); err != nil {
			l.logger.Error("failed to promote delayed job",
				zap.String("job_id", env.Job.ID), zap.Error(err))
		}
	}
}

func (l *RedisLane) Complete(ctx context.Context, env *Envelope) error {
	client := l.broker.Client()
	if client == nil {
		return domain.ErrBrokerUnavailable
	}

	member, err := env.encode()
	if err != nil {
		return err
	}

	pipe := client.TxPipeline()
	pipe.LPush(ctx, l.key("done"), member)
	pipe.LTrim(ctx, l.key("done"), 0, int64(l.retention.KeepCompleted)-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *RedisLane) Retry(ctx context.Context, env *Envelope, cause error) (bool, error) {
	client := l.broker.Client()
	if client == nil {
		return false, domain.ErrBrokerUnavailable
	}

	env.Attempt++
	env.LastError = cause.Error()

	if env.Attempt >= l.policy.MaxAttempts {
		member, err := env.encode()
		if err != nil {
			return true, err
		}
		l.logger.Warn("job dead-lettered",
			zap.String("job_id", env.Job.ID),
			zap.String("kind", string(env.Job.Kind)),
			zap.Int("attempts", env.Attempt),
			zap.String("cause", env.LastError),
		)
		return true, l.pushFailed(ctx, member)
	}

	delay := l.policy.Backoff(env.Attempt)
	member, err := env.encode()
	if err != nil {
		return false, err
	}

	err = client.ZAdd(ctx, l.key("delayed"), redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: member,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("schedule retry on %s: %w", l.name, err)
	}

	l.logger.Info("job retry scheduled",
		zap.String("job_id", env.Job.ID),
		zap.Int("attempt", env.Attempt),
		zap.Duration("delay", delay),
	)
	return false, nil
}

func (l *RedisLane) pushFailed(ctx context.Context, member string) error {
	client := l.broker.Client()
	if client == nil {
		return domain.ErrBrokerUnavailable
	}
	pipe := client.TxPipeline()
	pipe.LPush(ctx, l.key("failed"), member)
	pipe.LTrim(ctx, l.key("failed"), 0, int64(l.retention.KeepFailed)-1)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisLane) Depths(ctx context.Context) (ready, delayed, failed int64, err error) {
	client := l.broker.Client()
	if client == nil {
		return 0, 0, 0, domain.ErrBrokerUnavailable
	}

	if ready, err = client.ZCard(ctx, l.key("ready")).Result(); err != nil {
		return
	}
	if delayed, err = client.ZCard(ctx, l.key("delayed")).Result(); err != nil {
		return
	}
	failed, err = client.LLen(ctx, l.key("failed")).Result()
	return
}

func (l *RedisLane) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

var _ Lane = (*RedisLane)(nil)
