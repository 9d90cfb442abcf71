package domain

import (
	"math"
	"strings"
	"time"
)

// Grade is the canonical assessment-result record. The graded person and
// the assessed unit must already be synced.
type Grade struct {
	ID       string    `json:"external_id"`
	Person   Reference `json:"person"`
	Unit     Reference `json:"unit"`
	Score    float64   `json:"score"`
	GradedAt time.Time `json:"graded_at"`
}

// NewGrade validates and normalizes a grade record. Scores live on a
// 0-100 scale.
func NewGrade(externalID string, person, unit Reference, score float64, gradedAt time.Time) (Grade, error) {
	g := Grade{
		ID:       strings.TrimSpace(externalID),
		Person:   person,
		Unit:     unit,
		Score:    score,
		GradedAt: gradedAt,
	}
	if g.ID == "" {
		return Grade{}, validationError("external_id", "is required")
	}
	if g.Person.IsZero() {
		return Grade{}, validationError("person", "reference is required")
	}
	if g.Unit.IsZero() {
		return Grade{}, validationError("unit", "reference is required")
	}
	// NaN compares false against both bounds, so non-finite values need
	// their own check.
	if math.IsNaN(g.Score) || math.IsInf(g.Score, 0) || g.Score < 0 || g.Score > 100 {
		return Grade{}, validationError("score", "must be between 0 and 100")
	}
	return g, nil
}

func (g Grade) Kind() Kind         { return KindGrade }
func (g Grade) ExternalID() string { return g.ID }

func (g Grade) Properties() map[string]any {
	return map[string]any{
		"person":    g.Person.properties(),
		"unit":      g.Unit.properties(),
		"score":     g.Score,
		"graded_at": formatDate(g.GradedAt),
	}
}

func (g Grade) Dependencies() []Dependency {
	return []Dependency{
		{Kind: KindPerson, ExternalID: g.Person.ExternalID},
		{Kind: KindUnit, ExternalID: g.Unit.ExternalID},
	}
}
