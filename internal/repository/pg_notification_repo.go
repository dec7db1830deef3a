package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, tenant_id, user_id, title, message, type, related_schedule_id, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.TenantID, n.UserID, n.Title, n.Message, n.Type,
		n.RelatedScheduleID, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, title, message, type, related_schedule_id, is_read, created_at
		FROM notifications WHERE id = $1`, id)

	n := &domain.Notification{}
	err := row.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Title, &n.Message, &n.Type,
		&n.RelatedScheduleID, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}
	return n, nil
}

func (r *pgNotificationRepository) ListByUser(ctx context.Context, tenantID, userID int64, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT id, tenant_id, user_id, title, message, type, related_schedule_id, is_read, created_at
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2`
	if unreadOnly {
		query += " AND is_read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $3 OFFSET $4"

	rows, err := r.pool.Query(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Title, &n.Message, &n.Type,
			&n.RelatedScheduleID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, tenantID, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND is_read = false`,
		tenantID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = true
		WHERE tenant_id = $1 AND user_id = $2 AND is_read = false`,
		tenantID, userID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
