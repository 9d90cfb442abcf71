package domain

import "strings"

// Program is the canonical study-program record.
type Program struct {
	ID     string `json:"external_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// NewProgram validates and normalizes a program record.
func NewProgram(externalID, code, name, status string) (Program, error) {
	p := Program{
		ID:     strings.TrimSpace(externalID),
		Code:   strings.TrimSpace(code),
		Name:   strings.TrimSpace(name),
		Status: strings.TrimSpace(status),
	}
	if p.ID == "" {
		return Program{}, validationError("external_id", "is required")
	}
	if p.Name == "" {
		return Program{}, validationError("name", "is required")
	}
	return p, nil
}

func (p Program) Kind() Kind         { return KindProgram }
func (p Program) ExternalID() string { return p.ID }

func (p Program) Properties() map[string]any {
	return map[string]any{
		"code":   p.Code,
		"name":   p.Name,
		"status": p.Status,
	}
}

func (p Program) Dependencies() []Dependency { return nil }
