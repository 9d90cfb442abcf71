package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the synced entity kinds. Each kind has its own
// canonical record type and its own stored-record table.
type Kind string

const (
	KindPerson       Kind = "person"
	KindEnrollment   Kind = "enrollment"
	KindGrade        Kind = "grade"
	KindPayment      Kind = "payment"
	KindRegistration Kind = "registration"
	KindUnit         Kind = "unit"
	KindClass        Kind = "class"
	KindProgram      Kind = "program"
)

// Kinds lists every synced entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindPerson,
		KindEnrollment,
		KindGrade,
		KindPayment,
		KindRegistration,
		KindUnit,
		KindClass,
		KindProgram,
	}
}

// Valid reports whether k names a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPerson, KindEnrollment, KindGrade, KindPayment,
		KindRegistration, KindUnit, KindClass, KindProgram:
		return true
	}
	return false
}

// Reference is a cross-entity lookup carried as an external id plus an
// optional display name. The referenced record is not required to exist
// at parse time.
type Reference struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name,omitempty"`
}

// IsZero reports whether the reference carries no external id.
func (r Reference) IsZero() bool {
	return r.ExternalID == ""
}

func (r Reference) properties() map[string]any {
	return map[string]any{
		"external_id": r.ExternalID,
		"name":        r.Name,
	}
}

// Dependency names a parent record that must already be synced before the
// referencing record may be persisted.
type Dependency struct {
	Kind       Kind
	ExternalID string
}

// Canonical is the normalized, validated representation of one external
// system record, independent of either system's native field names.
type Canonical interface {
	Kind() Kind
	ExternalID() string
	// Properties returns the synced-relevant fields only; bookkeeping
	// fields (timestamps, local ids) never appear here. The fingerprint
	// is computed over this map.
	Properties() map[string]any
	// Dependencies lists the parent records that must exist before this
	// record may be persisted.
	Dependencies() []Dependency
}

// SyncStatus tracks the persistence state of a stored record.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
)

// StoredRecord is the persisted counterpart of a canonical record, scoped
// by tenant and uniquely indexed on (tenant_id, external_id).
type StoredRecord struct {
	ID          uuid.UUID      `json:"id"`
	TenantID    uuid.UUID      `json:"tenant_id"`
	ExternalID  string         `json:"external_id"`
	Properties  map[string]any `json:"properties"`
	Fingerprint string         `json:"fingerprint"`
	SyncStatus  SyncStatus     `json:"sync_status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewStoredRecord builds a stored record from a canonical record and its
// fingerprint.
func NewStoredRecord(tenantID uuid.UUID, c Canonical, fingerprint string) StoredRecord {
	now := time.Now()
	return StoredRecord{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ExternalID:  c.ExternalID(),
		Properties:  c.Properties(),
		Fingerprint: fingerprint,
		SyncStatus:  SyncStatusSynced,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// formatDate renders an optional date field for the properties map. A zero
// time renders as the empty string so omitted optionals hash identically
// across submissions.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
