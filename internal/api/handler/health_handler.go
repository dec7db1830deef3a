package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dockwise/scheduling-portal/internal/broker"
)

// HealthHandler serves the liveness/readiness probe endpoint.
type HealthHandler struct {
	broker *broker.Broker
	pool   *pgxpool.Pool
}

func NewHealthHandler(b *broker.Broker, pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{broker: b, pool: pool}
}

// Health handles GET /health.
// A process without a configured broker is healthy in degraded mode, so
// broker status is reported but never fails the probe on its own.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if err := h.pool.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	} else {
		body["database"] = "ok"
	}

	switch {
	case !h.broker.Available():
		body["broker"] = "disabled"
	case h.broker.HealthCheck(ctx):
		body["broker"] = "ok"
	default:
		body["broker"] = "unreachable"
	}

	respondJSON(w, status, body)
}
