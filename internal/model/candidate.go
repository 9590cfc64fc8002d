package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin identifies which extraction collaborator produced a raw candidate.
type Origin string

// Candidate origins.
const (
	OriginReceipt   Origin = "receipt"
	OriginStatement Origin = "statement"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

// Payment methods.
const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentWire PaymentMethod = "WIRE_TRANSFER"
)

// Valid reports whether p is a recognized payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentWire:
		return true
	}
	return false
}

// RawCandidate is one unvalidated transaction record produced by an external
// extraction collaborator. It has no identity beyond its position in its
// source batch and is never mutated after creation, only consumed into a
// MergedItem.
type RawCandidate struct {
	Date          time.Time
	Merchant      string
	Description   string
	Category      CategoryRef
	Subcategory   CategoryRef
	LineItems     []string
	OriginalItems []string
	Amount        decimal.Decimal
	Currency      Currency
	PaymentMethod PaymentMethod
	Origin        Origin
}
