package repository

import (
	"context"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// NotificationRepository persists in-app notification rows.
// The delivery subsystem only calls Create — and only once per logical
// event; retries of the realtime fanout job never re-invoke it. The read
// and read-state operations exist for the portal's notification screens.
// The pgx implementation is in pg_notification_repo.go; tests use the
// hand-written mock in mock_notification_repo.go.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, tenantID, userID int64, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, tenantID, userID int64) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, tenantID, userID int64) error
}
