package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// RealtimeHandler fans one event out to all of a tenant's connected
// listeners via the Broadcaster collaborator.
type RealtimeHandler struct {
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewRealtimeHandler(broadcaster Broadcaster, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{broadcaster: broadcaster, logger: logger}
}

func (h *RealtimeHandler) Handle(ctx context.Context, job *domain.NotificationJob) error {
	p := job.Realtime
	if p == nil {
		return fmt.Errorf("realtime job %s has no payload: %w", job.ID, domain.ErrPayloadMismatch)
	}

	count, err := h.broadcaster.BroadcastToTenant(ctx, job.TenantID, p.EventType, p.Data)
	if err != nil {
		h.logger.Error("tenant broadcast failed",
			zap.Int64("tenant_id", job.TenantID),
			zap.String("event_type", p.EventType),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("tenant broadcast delivered",
		zap.Int64("tenant_id", job.TenantID),
		zap.String("event_type", p.EventType),
		zap.Int("clients_reached", count),
	)
	return nil
}
