package parser

import (
	"errors"
	"testing"

	"github.com/tobyh/campussync/internal/domain"
)

func TestRecordsUnwrapsDataEnvelope(t *testing.T) {
	records, err := Records([]byte(`{"data":[{"id":"a"},{"id":"b"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if RecordID(records[0]) != "a" || RecordID(records[1]) != "b" {
		t.Fatalf("unexpected record ids: %v", records)
	}
}

func TestRecordsAcceptsSingleObject(t *testing.T) {
	records, err := Records([]byte(`{"id":"a","Unit_Code":"U1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || RecordID(records[0]) != "a" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestRecordsRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := Records([]byte("  ")); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := Records([]byte(`{"data": "nope"}`)); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope for non-array data, got %v", err)
	}
	if _, err := Records([]byte(`not json`)); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope for invalid json, got %v", err)
	}
	if _, err := Records([]byte(`{"data": []}`)); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope for empty data array, got %v", err)
	}
}

func TestRecordsKeepsSlotForNonObjectItem(t *testing.T) {
	records, err := Records([]byte(`{"data":[{"id":"a"}, 42]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(records))
	}
	if records[1] != nil {
		t.Fatalf("non-object item should yield nil slot")
	}
	if _, rejection := Parse(domain.KindUnit, records[1]); rejection == nil {
		t.Fatalf("nil slot should be rejected at parse time")
	}
}

func TestParseUnitAliasesFirstMatchWins(t *testing.T) {
	raw := Raw{"id": "u1", "Unit_Code": "UNIT001", "Code": "SHADOWED", "Unit_Name": "Intro"}
	rec, rejection := Parse(domain.KindUnit, raw)
	if rejection != nil {
		t.Fatalf("unexpected rejection: %v", rejection)
	}
	unit, ok := rec.(Unit)
	if !ok {
		t.Fatalf("expected Unit, got %T", rec)
	}
	if unit.Code != "UNIT001" {
		t.Fatalf("first alias must win, got %q", unit.Code)
	}
}

func TestParseUnitLegacyKeys(t *testing.T) {
	raw := Raw{"id": "u1", "Code": "UNIT001", "Name": "Intro"}
	rec, rejection := Parse(domain.KindUnit, raw)
	if rejection != nil {
		t.Fatalf("legacy keys should parse: %v", rejection)
	}
	unit := rec.(Unit)
	if unit.Code != "UNIT001" || unit.Name != "Intro" {
		t.Fatalf("unexpected unit: %+v", unit)
	}
}

func TestParseClassAcceptsThreeLegacyNameKeys(t *testing.T) {
	for _, key := range []string{"Class_Name", "Subject_Name", "Name"} {
		raw := Raw{"id": "c1", key: "Algebra"}
		rec, rejection := Parse(domain.KindClass, raw)
		if rejection != nil {
			t.Fatalf("key %q should parse: %v", key, rejection)
		}
		if rec.(Class).Name != "Algebra" {
			t.Fatalf("key %q: unexpected name %q", key, rec.(Class).Name)
		}
	}
}

func TestParseMissingRequiredFieldReasonCode(t *testing.T) {
	raw := Raw{"id": "u1", "Unit_Name": "Intro"}
	_, rejection := Parse(domain.KindUnit, raw)
	if rejection == nil {
		t.Fatalf("expected rejection for missing code")
	}
	if rejection.Code != "missing_field" || rejection.Field != "code" {
		t.Fatalf("unexpected rejection: %+v", rejection)
	}
}

func TestParseLookupShapedReference(t *testing.T) {
	raw := Raw{
		"id":      "e1",
		"Contact": map[string]any{"id": "p1", "name": "Ada Lovelace"},
		"Class":   "c1",
	}
	rec, rejection := Parse(domain.KindEnrollment, raw)
	if rejection != nil {
		t.Fatalf("unexpected rejection: %v", rejection)
	}
	enrollment := rec.(Enrollment)
	if enrollment.Person.ExternalID != "p1" || enrollment.Person.Name != "Ada Lovelace" {
		t.Fatalf("lookup object not normalized: %+v", enrollment.Person)
	}
	if enrollment.Class.ExternalID != "c1" || enrollment.Class.Name != "" {
		t.Fatalf("bare string reference not accepted: %+v", enrollment.Class)
	}
}

func TestParseGradeScoreFormats(t *testing.T) {
	for _, score := range []any{85.5, "85.5"} {
		raw := Raw{"id": "g1", "Contact": "p1", "Unit": "u1", "Score": score}
		rec, rejection := Parse(domain.KindGrade, raw)
		if rejection != nil {
			t.Fatalf("score %v should parse: %v", score, rejection)
		}
		if rec.(Grade).Score != 85.5 {
			t.Fatalf("score %v: got %v", score, rec.(Grade).Score)
		}
	}

	raw := Raw{"id": "g1", "Contact": "p1", "Unit": "u1", "Score": "many"}
	_, rejection := Parse(domain.KindGrade, raw)
	if rejection == nil || rejection.Code != "invalid_field" {
		t.Fatalf("non-numeric score should reject with invalid_field, got %+v", rejection)
	}
}

func TestParsePaymentDates(t *testing.T) {
	raw := Raw{"id": "p1", "Contact": "c1", "Amount": 250.0, "Payment_Date": "2026-02-14"}
	rec, rejection := Parse(domain.KindPayment, raw)
	if rejection != nil {
		t.Fatalf("unexpected rejection: %v", rejection)
	}
	payment := rec.(Payment)
	if payment.PaidAt.IsZero() {
		t.Fatalf("payment date should be parsed")
	}
	if got := payment.PaidAt.Format("2006-01-02"); got != "2026-02-14" {
		t.Fatalf("unexpected date: %s", got)
	}
}

func TestParseUnknownModule(t *testing.T) {
	_, rejection := Parse(domain.Kind("invoice"), Raw{"id": "x"})
	if rejection == nil || rejection.Code != "unknown_module" {
		t.Fatalf("expected unknown_module rejection, got %+v", rejection)
	}
}
