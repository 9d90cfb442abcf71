package domain

import (
	"strings"
	"time"
)

// Registration links a person to a study program. Both the person and
// the program must already be synced.
type Registration struct {
	ID           string    `json:"external_id"`
	Person       Reference `json:"person"`
	Program      Reference `json:"program"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration validates and normalizes a registration record.
func NewRegistration(externalID string, person, program Reference, status string, registeredAt time.Time) (Registration, error) {
	r := Registration{
		ID:           strings.TrimSpace(externalID),
		Person:       person,
		Program:      program,
		Status:       strings.TrimSpace(status),
		RegisteredAt: registeredAt,
	}
	if r.ID == "" {
		return Registration{}, validationError("external_id", "is required")
	}
	if r.Person.IsZero() {
		return Registration{}, validationError("person", "reference is required")
	}
	if r.Program.IsZero() {
		return Registration{}, validationError("program", "reference is required")
	}
	return r, nil
}

func (r Registration) Kind() Kind         { return KindRegistration }
func (r Registration) ExternalID() string { return r.ID }

func (r Registration) Properties() map[string]any {
	return map[string]any{
		"person":        r.Person.properties(),
		"program":       r.Program.properties(),
		"status":        r.Status,
		"registered_at": formatDate(r.RegisteredAt),
	}
}

func (r Registration) Dependencies() []Dependency {
	return []Dependency{
		{Kind: KindPerson, ExternalID: r.Person.ExternalID},
		{Kind: KindProgram, ExternalID: r.Program.ExternalID},
	}
}
