package domain

import "strings"

// Unit is the canonical course-unit record.
type Unit struct {
	ID          string `json:"external_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// NewUnit validates and normalizes a unit record.
func NewUnit(externalID, code, name, status, description string) (Unit, error) {
	u := Unit{
		ID:          strings.TrimSpace(externalID),
		Code:        strings.TrimSpace(code),
		Name:        strings.TrimSpace(name),
		Status:      strings.TrimSpace(status),
		Description: strings.TrimSpace(description),
	}
	if u.ID == "" {
		return Unit{}, validationError("external_id", "is required")
	}
	if u.Code == "" {
		return Unit{}, validationError("code", "is required")
	}
	if u.Name == "" {
		return Unit{}, validationError("name", "is required")
	}
	return u, nil
}

func (u Unit) Kind() Kind         { return KindUnit }
func (u Unit) ExternalID() string { return u.ID }

func (u Unit) Properties() map[string]any {
	return map[string]any{
		"code":        u.Code,
		"name":        u.Name,
		"status":      u.Status,
		"description": u.Description,
	}
}

func (u Unit) Dependencies() []Dependency { return nil }
