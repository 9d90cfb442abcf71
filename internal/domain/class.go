package domain

import (
	"strings"
	"time"
)

// Class is the canonical scheduled-class record. A class optionally points
// at the unit it delivers; the unit does not have to be synced first.
type Class struct {
	ID        string    `json:"external_id"`
	Name      string    `json:"name"`
	Unit      Reference `json:"unit"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

// NewClass validates and normalizes a class record.
func NewClass(externalID, name string, unit Reference, startDate, endDate time.Time, status string) (Class, error) {
	c := Class{
		ID:        strings.TrimSpace(externalID),
		Name:      strings.TrimSpace(name),
		Unit:      unit,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    strings.TrimSpace(status),
	}
	if c.ID == "" {
		return Class{}, validationError("external_id", "is required")
	}
	if c.Name == "" {
		return Class{}, validationError("name", "is required")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return Class{}, validationError("end_date", "precedes start_date")
	}
	return c, nil
}

func (c Class) Kind() Kind         { return KindClass }
func (c Class) ExternalID() string { return c.ID }

func (c Class) Properties() map[string]any {
	return map[string]any{
		"name":       c.Name,
		"unit":       c.Unit.properties(),
		"start_date": formatDate(c.StartDate),
		"end_date":   formatDate(c.EndDate),
		"status":     c.Status,
	}
}

func (c Class) Dependencies() []Dependency { return nil }
