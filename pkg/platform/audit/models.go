package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// simulated fund movements.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// rejected credentials and rate-limit rejections.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from middleware and services to capture key actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory     `json:"category"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Subject   string            `json:"subject,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

type AuditEvent string

const (
	EventAuthRejected      AuditEvent = "auth_rejected"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
	EventTransferInitiated AuditEvent = "transfer_initiated"
	EventSnapshotLoaded    AuditEvent = "snapshot_loaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthRejected:      CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,
	EventTransferInitiated: CategoryCompliance,
	EventSnapshotLoaded:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// NewEvent builds an Event with its category resolved from the action.
func NewEvent(action AuditEvent, now time.Time) Event {
	return Event{
		Category:  action.Category(),
		Timestamp: now,
		Action:    string(action),
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what middleware and services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
