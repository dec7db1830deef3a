package domain

import "time"

// Notification is the persisted in-app notification row. Created once per
// logical event; this subsystem never deletes one, and only the portal's
// CRUD layer flips IsRead.
type Notification struct {
	ID                string    `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	UserID            int64     `json:"user_id"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Type              string    `json:"type"`
	RelatedScheduleID *int64    `json:"related_schedule_id,omitempty"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}
