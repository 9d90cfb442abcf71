package domain

import "strings"

// Person is the canonical contact record from System A.
type Person struct {
	ID        string `json:"external_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

// NewPerson validates and normalizes a person record.
func NewPerson(externalID, firstName, lastName, email, phone, status string) (Person, error) {
	p := Person{
		ID:        strings.TrimSpace(externalID),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Status:    strings.TrimSpace(status),
	}
	if p.ID == "" {
		return Person{}, validationError("external_id", "is required")
	}
	if p.FirstName == "" {
		return Person{}, validationError("first_name", "is required")
	}
	if p.LastName == "" {
		return Person{}, validationError("last_name", "is required")
	}
	return p, nil
}

func (p Person) Kind() Kind         { return KindPerson }
func (p Person) ExternalID() string { return p.ID }

func (p Person) Properties() map[string]any {
	return map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"phone":      p.Phone,
		"status":     p.Status,
	}
}

func (p Person) Dependencies() []Dependency { return nil }
