package domain

import (
	"math"
	"strings"
	"time"
)

// Payment is the canonical fee-payment record. The paying person must
// already be synced.
type Payment struct {
	ID       string    `json:"external_id"`
	Person   Reference `json:"person"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
	PaidAt   time.Time `json:"paid_at"`
	Status   string    `json:"status"`
}

// NewPayment validates and normalizes a payment record.
func NewPayment(externalID string, person Reference, amount float64, currency string, paidAt time.Time, status string) (Payment, error) {
	p := Payment{
		ID:       strings.TrimSpace(externalID),
		Person:   person,
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		PaidAt:   paidAt,
		Status:   strings.TrimSpace(status),
	}
	if p.ID == "" {
		return Payment{}, validationError("external_id", "is required")
	}
	if p.Person.IsZero() {
		return Payment{}, validationError("person", "reference is required")
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount < 0 {
		return Payment{}, validationError("amount", "must be a non-negative number")
	}
	return p, nil
}

func (p Payment) Kind() Kind         { return KindPayment }
func (p Payment) ExternalID() string { return p.ID }

func (p Payment) Properties() map[string]any {
	return map[string]any{
		"person":   p.Person.properties(),
		"amount":   p.Amount,
		"currency": p.Currency,
		"paid_at":  formatDate(p.PaidAt),
		"status":   p.Status,
	}
}

func (p Payment) Dependencies() []Dependency {
	return []Dependency{
		{Kind: KindPerson, ExternalID: p.Person.ExternalID},
	}
}
