package domain

import "errors"

// Sentinel errors used throughout the subsystem.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnknownJobKind      = errors.New("unknown job kind: must be email, realtime, or push")
	ErrPayloadMismatch     = errors.New("job payload does not match its kind")
	ErrMissingTenant       = errors.New("tenant id is required")
	ErrMissingEventType    = errors.New("realtime event type must not be empty")
	ErrInvalidEmailEvent   = errors.New("invalid email event kind")
	ErrInvalidPriority     = errors.New("invalid priority: must be normal or urgent")
	ErrEmailPayloadMissing = errors.New("email job is missing its payload")
	ErrMissingRecipient    = errors.New("email recipient must not be empty")
	ErrBrokerUnavailable   = errors.New("broker connection is not configured")
)
