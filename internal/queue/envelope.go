package queue

import (
	"encoding/json"
	"time"

	"github.com/dockwise/scheduling-portal/internal/domain"
)

// Envelope wraps a job with the queue-level bookkeeping that travels with it
// across the broker: scheduling weight, how many attempts have already run,
// and the last failure cause for the dead-letter record.
type Envelope struct {
	Job        domain.NotificationJob `json:"job"`
	Weight     int                    `json:"weight"`
	Attempt    int                    `json:"attempt"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
	LastError  string                 `json:"last_error,omitempty"`
}

func newEnvelope(job domain.NotificationJob, weight int) *Envelope {
	return &Envelope{
		Job:        job,
		Weight:     weight,
		EnqueuedAt: time.Now().UTC(),
	}
}

func (e *Envelope) encode() (string, error) {
	raw, err := json.Marshal(e)
	return string(raw), err
}

func decodeEnvelope(raw string) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	if err := e.Job.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
