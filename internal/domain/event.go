package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventStatus tracks an event log entry through its lifecycle.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// EventLogEntry is the durable audit record for one inbound raw record.
// It is written by the pipeline and read by nothing in the pipeline; it
// exists for external observability and replay tooling.
type EventLogEntry struct {
	ID           uuid.UUID       `json:"id"`
	EventID      string          `json:"event_id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Source       string          `json:"source"`
	Module       Kind            `json:"module"`
	EventType    string          `json:"event_type"`
	RecordID     string          `json:"record_id"`
	Payload      json.RawMessage `json:"payload"`
	Status       EventStatus     `json:"status"`
	Result       string          `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EventID derives the globally unique event identity from the event's
// coordinates. This is deliberately independent of the idempotency guard's
// payload hash: the guard dedups identical payloads, the event id dedups
// redelivered notifications for the same record instance.
func EventID(source string, module Kind, recordID, instance string) string {
	parts := []string{
		strings.TrimSpace(source),
		string(module),
		strings.TrimSpace(recordID),
		strings.TrimSpace(instance),
	}
	return strings.Join(parts, ":")
}

// NewEventLogEntry builds a pending entry for one raw record.
func NewEventLogEntry(tenantID uuid.UUID, source string, module Kind, eventType, recordID, instance string, payload json.RawMessage) EventLogEntry {
	now := time.Now()
	return EventLogEntry{
		ID:        uuid.New(),
		EventID:   EventID(source, module, recordID, instance),
		TenantID:  tenantID,
		Source:    source,
		Module:    module,
		EventType: eventType,
		RecordID:  recordID,
		Payload:   payload,
		Status:    EventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Describe renders a short human-readable identity for log lines.
func (e EventLogEntry) Describe() string {
	return fmt.Sprintf("%s/%s record=%s", e.Source, e.Module, e.RecordID)
}
