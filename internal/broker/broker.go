package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/config"
)

// Broker owns the single shared Redis connection for the whole process.
// Both queue lanes and both workers multiplex over it; nothing else in the
// subsystem is allowed to hold a live socket to the backing store.
//
// A Broker built from a config with no Redis settings is valid: Client()
// returns nil and the subsystem falls back to direct execution.
type Broker struct {
	logger *zap.Logger

	mu     sync.Mutex
	client *redis.Client
}

// Connect builds the broker handle and, if Redis is configured, dials and
// pings it once. Connection errors are logged, not fatal: the process keeps
// running and go-redis reconnects on its own when the server comes back.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Broker, error) {
	b := &Broker{logger: logger}

	if !cfg.BrokerConfigured() {
		logger.Info("no broker configured, notification jobs will run inline")
		return b, nil
	}

	client, target, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx).Err(); err != nil {
		// Not fatal: queue operations will surface errors per job and the
		// client retries the connection on each use.
		logger.Error("broker ping failed", zap.String("target", target), zap.Error(err))
	} else {
		logger.Info("connected to broker", zap.String("target", target))
	}

	b.client = client
	return b, nil
}

func newClient(cfg *config.Config) (*redis.Client, string, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, "", fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return redis.NewClient(opt), opt.Addr, nil
	}

	addr := cfg.RedisAddr()
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	}), addr, nil
}

// Client returns the shared connection, or nil when no broker is configured.
func (b *Broker) Client() *redis.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client
}

// Available reports whether a broker connection exists at all.
func (b *Broker) Available() bool {
	return b.Client() != nil
}

// HealthCheck issues a PING round trip. Returns false when no broker is
// configured or the ping fails.
func (b *Broker) HealthCheck(ctx context.Context) bool {
	client := b.Client()
	if client == nil {
		return false
	}
	if err := client.Ping(ctx).Err(); err != nil {
		b.logger.Warn("broker health check failed", zap.Error(err))
		return false
	}
	return true
}

// Shutdown closes the connection and clears the handle. Safe to call when
// no broker was ever configured, and safe to call more than once.
func (b *Broker) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	if err != nil {
		b.logger.Warn("broker connection closed with error", zap.Error(err))
		return err
	}
	b.logger.Info("broker connection closed")
	return nil
}
