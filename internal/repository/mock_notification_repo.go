package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests. No mock-generation library needed.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification

	// CreateErr simulates a storage failure on Create.
	CreateErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]*domain.Notification),
	}
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notifications[n.ID] = &clone
	return nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) ListByUser(_ context.Context, tenantID, userID int64, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.TenantID != tenantID || n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockNotificationRepository) CountUnread(_ context.Context, tenantID, userID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, n := range m.notifications {
		if n.TenantID == tenantID && n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(_ context.Context, tenantID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.TenantID == tenantID && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// Count returns how many rows the mock holds. Test helper.
func (m *MockNotificationRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifications)
}

var _ NotificationRepository = (*MockNotificationRepository)(nil)
