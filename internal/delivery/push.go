package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// PushHandler is a reserved extension point for mobile push delivery.
// It deliberately does nothing beyond logging: the payload shape is kept on
// the wire so queued push jobs remain decodable once a provider is wired in.
type PushHandler struct {
	logger *zap.Logger
}

func NewPushHandler(logger *zap.Logger) *PushHandler {
	return &PushHandler{logger: logger}
}

func (h *PushHandler) Handle(_ context.Context, job *domain.NotificationJob) error {
	title := ""
	if job.Push != nil {
		title = job.Push.Title
	}
	h.logger.Info("push notification skipped (no provider configured)",
		zap.Int64("tenant_id", job.TenantID),
		zap.String("title", title),
	)
	return nil
}
