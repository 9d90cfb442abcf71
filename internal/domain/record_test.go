package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewPersonTrimsAndValidates(t *testing.T) {
	p, err := NewPerson(" p1 ", "  Ada ", " Lovelace ", " ada@example.com ", "", " Active ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p1" || p.FirstName != "Ada" || p.LastName != "Lovelace" {
		t.Fatalf("fields not trimmed: %+v", p)
	}
	if p.Email != "ada@example.com" || p.Status != "Active" {
		t.Fatalf("optional fields not normalized: %+v", p)
	}
}

func TestNewPersonRejectsEmptyAfterTrim(t *testing.T) {
	_, err := NewPerson("p1", "   ", "Lovelace", "", "", "")
	if err == nil {
		t.Fatalf("expected validation error for blank first name")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewPersonRequiresExternalID(t *testing.T) {
	_, err := NewPerson("  ", "Ada", "Lovelace", "", "", "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing external id, got %v", err)
	}
}

func TestNewGradeScoreRange(t *testing.T) {
	person := Reference{ExternalID: "p1"}
	unit := Reference{ExternalID: "u1"}

	for _, score := range []float64{0, 50, 100} {
		if _, err := NewGrade("g1", person, unit, score, time.Time{}); err != nil {
			t.Fatalf("score %v should be valid: %v", score, err)
		}
	}
	for _, score := range []float64{-0.5, 100.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewGrade("g1", person, unit, score, time.Time{}); !errors.Is(err, ErrValidation) {
			t.Fatalf("score %v should be rejected, got %v", score, err)
		}
	}
}

func TestNewGradeRequiresReferences(t *testing.T) {
	_, err := NewGrade("g1", Reference{}, Reference{ExternalID: "u1"}, 50, time.Time{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing person ref, got %v", err)
	}
}

func TestNewPaymentRejectsNegativeAmount(t *testing.T) {
	for _, amount := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewPayment("pay1", Reference{ExternalID: "p1"}, amount, "aud", time.Time{}, ""); !errors.Is(err, ErrValidation) {
			t.Fatalf("amount %v should be rejected, got %v", amount, err)
		}
	}

	p, err := NewPayment("pay1", Reference{ExternalID: "p1"}, 0, "aud", time.Time{}, "")
	if err != nil {
		t.Fatalf("zero amount should be valid: %v", err)
	}
	if p.Currency != "AUD" {
		t.Fatalf("currency not upcased: %q", p.Currency)
	}
}

func TestNewClassRejectsInvertedDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err := NewClass("c1", "Intro", Reference{}, start, end, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for end before start, got %v", err)
	}
}

func TestDependenciesNamedPerKind(t *testing.T) {
	e, err := NewEnrollment("e1", Reference{ExternalID: "p1"}, Reference{ExternalID: "c1"}, "Active", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deps := e.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(deps))
	}
	if deps[0].Kind != KindPerson || deps[0].ExternalID != "p1" {
		t.Fatalf("unexpected first dependency: %+v", deps[0])
	}
	if deps[1].Kind != KindClass || deps[1].ExternalID != "c1" {
		t.Fatalf("unexpected second dependency: %+v", deps[1])
	}
}

func TestPropertiesExcludeBookkeeping(t *testing.T) {
	u, err := NewUnit("u1", "UNIT001", "Intro", "Active", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props := u.Properties()
	for _, forbidden := range []string{"created_at", "updated_at", "id", "external_id"} {
		if _, ok := props[forbidden]; ok {
			t.Fatalf("properties must not contain %q", forbidden)
		}
	}
	if props["code"] != "UNIT001" || props["status"] != "Active" {
		t.Fatalf("unexpected properties: %+v", props)
	}
}

func TestEventIDIndependentOfPayload(t *testing.T) {
	a := EventID("crm", KindUnit, "u1", "n-1")
	b := EventID("crm", KindUnit, "u1", "n-1")
	if a != b {
		t.Fatalf("event id must be deterministic: %q vs %q", a, b)
	}
	if a == EventID("crm", KindUnit, "u1", "n-2") {
		t.Fatalf("different notification instances must produce different event ids")
	}
	if a == EventID("crm", KindClass, "u1", "n-1") {
		t.Fatalf("different modules must produce different event ids")
	}
}
