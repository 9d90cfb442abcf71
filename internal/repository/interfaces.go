package repository

import (
	"context"

	"github.com/tobyh/campussync/internal/domain"

	"github.com/google/uuid"
)

// RecordRepository persists stored records for one entity kind. Exactly
// one row per (tenant_id, external_id) ever exists; the table's unique
// index is the final arbiter under concurrent writers.
type RecordRepository interface {
	// GetByExternalID returns the stored record, or ErrNotFound.
	GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (domain.StoredRecord, error)
	// Insert creates a new row; a concurrent insert for the same key
	// surfaces as ErrDuplicate.
	Insert(ctx context.Context, record domain.StoredRecord) error
	// Update overwrites all canonical fields and the fingerprint for the
	// row identified by (tenant_id, external_id).
	Update(ctx context.Context, record domain.StoredRecord) error
	// Exists reports whether a synced row exists for the key. Used for
	// dependency checks before persisting referencing records.
	Exists(ctx context.Context, tenantID uuid.UUID, externalID string) (bool, error)
}

// RecordStore resolves the repository for an entity kind, so sync services
// can verify parent dependencies across kinds.
type RecordStore interface {
	Records(kind domain.Kind) RecordRepository
}

// EventLogRepository is the durable audit trail, keyed by the globally
// unique event id.
type EventLogRepository interface {
	// Record inserts a pending entry; a replayed event id surfaces as
	// ErrDuplicate with no side effects.
	Record(ctx context.Context, entry domain.EventLogEntry) error
	MarkProcessing(ctx context.Context, eventID string) error
	MarkCompleted(ctx context.Context, eventID string, result string) error
	MarkFailed(ctx context.Context, eventID string, errorMessage string) error
	// List returns recent entries for a tenant, newest first. The
	// pipeline never calls this; it exists for observability tooling.
	List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]domain.EventLogEntry, error)
}
