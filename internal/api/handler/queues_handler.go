package handler

import (
	"net/http"

	"github.com/dockwise/scheduling-portal/internal/queue"
)

// QueuesHandler serves a JSON snapshot of queue depths for dashboards.
type QueuesHandler struct {
	pair *queue.Pair
}

func NewQueuesHandler(pair *queue.Pair) *QueuesHandler {
	return &QueuesHandler{pair: pair}
}

type queueDepth struct {
	Name    string `json:"name"`
	Ready   int64  `json:"ready"`
	Delayed int64  `json:"delayed"`
	Failed  int64  `json:"failed"`
}

// GetQueues handles GET /api/v1/queues.
func (h *QueuesHandler) GetQueues(w http.ResponseWriter, r *http.Request) {
	if !h.pair.Enabled() {
		respondJSON(w, http.StatusOK, map[string]any{
			"mode":   "direct",
			"queues": []queueDepth{},
		})
		return
	}

	ctx := r.Context()
	depths := make([]queueDepth, 0, 2)
	for _, lane := range []queue.Lane{h.pair.Normal, h.pair.Urgent} {
		ready, delayed, failed, err := lane.Depths(ctx)
		if err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "queue depths unavailable: " + err.Error(),
			})
			return
		}
		depths = append(depths, queueDepth{Name: lane.Name(), Ready: ready, Delayed: delayed, Failed: failed})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"mode":   "queued",
		"queues": depths,
	})
}
