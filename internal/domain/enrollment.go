package domain

import (
	"strings"
	"time"
)

// Enrollment links a person to a class. Both the person and the class must
// already be synced before the enrollment may be persisted.
type Enrollment struct {
	ID         string    `json:"external_id"`
	Person     Reference `json:"person"`
	Class      Reference `json:"class"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewEnrollment validates and normalizes an enrollment record.
func NewEnrollment(externalID string, person, class Reference, status string, enrolledAt time.Time) (Enrollment, error) {
	e := Enrollment{
		ID:         strings.TrimSpace(externalID),
		Person:     person,
		Class:      class,
		Status:     strings.TrimSpace(status),
		EnrolledAt: enrolledAt,
	}
	if e.ID == "" {
		return Enrollment{}, validationError("external_id", "is required")
	}
	if e.Person.IsZero() {
		return Enrollment{}, validationError("person", "reference is required")
	}
	if e.Class.IsZero() {
		return Enrollment{}, validationError("class", "reference is required")
	}
	return e, nil
}

func (e Enrollment) Kind() Kind         { return KindEnrollment }
func (e Enrollment) ExternalID() string { return e.ID }

func (e Enrollment) Properties() map[string]any {
	return map[string]any{
		"person":      e.Person.properties(),
		"class":       e.Class.properties(),
		"status":      e.Status,
		"enrolled_at": formatDate(e.EnrolledAt),
	}
}

func (e Enrollment) Dependencies() []Dependency {
	return []Dependency{
		{Kind: KindPerson, ExternalID: e.Person.ExternalID},
		{Kind: KindClass, ExternalID: e.Class.ExternalID},
	}
}
