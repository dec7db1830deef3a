package broker_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/config"
)

func TestConnect_NoBrokerConfigured(t *testing.T) {
	ctx := context.Background()

	// No REDIS_URL, no REDIS_HOST: a supported configuration, not an error.
	b, err := broker.Connect(ctx, &config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Available() {
		t.Fatal("expected no connection without broker settings")
	}
	if b.Client() != nil {
		t.Fatal("expected a nil client without broker settings")
	}
	if b.HealthCheck(ctx) {
		t.Fatal("health check must be false without a connection")
	}

	// Shutdown must be a safe no-op, repeatedly.
	if err := b.Shutdown(); err != nil {
		t.Fatalf("shutdown errored: %v", err)
	}
	if err := b.Shutdown(); err != nil {
		t.Fatalf("second shutdown errored: %v", err)
	}
}

func TestBrokerConfigured(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected bool
	}{
		{"nothing set", config.Config{}, false},
		{"url set", config.Config{RedisURL: "redis://localhost:6379"}, true},
		{"host set", config.Config{RedisHost: "localhost", RedisPort: "6379"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.BrokerConfigured(); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
