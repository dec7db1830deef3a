package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/api/handler"
	apimw "github.com/dockwise/scheduling-portal/internal/api/middleware"
	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/queue"
)

// NewRouter wires the ops-only HTTP surface: probes, metrics, and queue
// depth snapshots. The portal's CRUD API is served by a separate component.
func NewRouter(
	b *broker.Broker,
	pool *pgxpool.Pool,
	pair *queue.Pair,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	hh := handler.NewHealthHandler(b, pool)
	qh := handler.NewQueuesHandler(pair)

	r.Get("/health", hh.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queues", qh.GetQueues)
	})

	return r
}
