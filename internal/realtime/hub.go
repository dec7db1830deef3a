package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event is one fanout message delivered to a tenant's listeners.
type Event struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// Hub is the in-process tenant-scoped fanout primitive. The portal's
// websocket layer subscribes connections here; the notification subsystem
// only ever calls BroadcastToTenant.
//
// Delivery to a listener is best-effort: a subscriber that is not draining
// its channel is skipped rather than blocking the broadcast, and skipped
// listeners do not count as reached.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	nextID  int64
	tenants map[int64]map[int64]chan Event
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		tenants: make(map[int64]map[int64]chan Event),
	}
}

// Subscribe registers a listener for one tenant and returns its event
// channel plus an unsubscribe function. The channel is closed on unsubscribe.
func (h *Hub) Subscribe(tenantID int64) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Event, 16)

	if h.tenants[tenantID] == nil {
		h.tenants[tenantID] = make(map[int64]chan Event)
	}
	h.tenants[tenantID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		listeners, ok := h.tenants[tenantID]
		if !ok {
			return
		}
		if c, ok := listeners[id]; ok {
			delete(listeners, id)
			close(c)
		}
		if len(listeners) == 0 {
			delete(h.tenants, tenantID)
		}
	}
}

// BroadcastToTenant sends the event to every listener of the tenant and
// returns how many were reached. Zero listeners is success with count 0.
func (h *Hub) BroadcastToTenant(_ context.Context, tenantID int64, eventType string, data map[string]any) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	listeners := h.tenants[tenantID]
	if len(listeners) == 0 {
		return 0, nil
	}

	event := Event{EventType: eventType, Data: data}
	reached := 0
	for _, ch := range listeners {
		select {
		case ch <- event:
			reached++
		default:
			h.logger.Warn("slow realtime listener skipped",
				zap.Int64("tenant_id", tenantID),
				zap.String("event_type", eventType),
			)
		}
	}
	return reached, nil
}
