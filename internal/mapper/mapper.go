// Package mapper converts parsed flat records into canonical domain
// records. Domain invariants (non-empty after trim, numeric ranges) are
// enforced here, not in the parser: the parser only extracts shape.
package mapper

import (
	"fmt"

	"github.com/tobyh/campussync/internal/domain"
	"github.com/tobyh/campussync/internal/parser"
)

// Map builds the canonical record for one parsed record. Failures wrap
// domain.ErrValidation and are labeled with the entity kind; a failure for
// one record never affects others in the same batch.
func Map(rec parser.Record) (domain.Canonical, error) {
	canonical, err := build(rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Kind(), err)
	}
	return canonical, nil
}

func build(rec parser.Record) (domain.Canonical, error) {
	switch r := rec.(type) {
	case parser.Person:
		return domain.NewPerson(r.ID, r.FirstName, r.LastName, r.Email, r.Phone, r.Status)
	case parser.Unit:
		return domain.NewUnit(r.ID, r.Code, r.Name, r.Status, r.Description)
	case parser.Class:
		return domain.NewClass(r.ID, r.Name, r.Unit, r.StartDate, r.EndDate, r.Status)
	case parser.Program:
		return domain.NewProgram(r.ID, r.Code, r.Name, r.Status)
	case parser.Enrollment:
		return domain.NewEnrollment(r.ID, r.Person, r.Class, r.Status, r.EnrolledAt)
	case parser.Grade:
		return domain.NewGrade(r.ID, r.Person, r.Unit, r.Score, r.GradedAt)
	case parser.Payment:
		return domain.NewPayment(r.ID, r.Person, r.Amount, r.Currency, r.PaidAt, r.Status)
	case parser.Registration:
		return domain.NewRegistration(r.ID, r.Person, r.Program, r.Status, r.RegisteredAt)
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}
