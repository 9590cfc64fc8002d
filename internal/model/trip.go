package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trip groups expenses under one budget and one fixed set of exchange
// rates. Rates are locked for the trip's lifetime once expenses exist
// against it.
type Trip struct {
	StartDate    time.Time
	CreatedAt    time.Time
	EndDate      *time.Time
	Name         string
	CountryCode  string
	RateEURToHUF decimal.Decimal
	RateUSDToHUF decimal.Decimal
	RateHRKToHUF decimal.Decimal
	BudgetHUF    int64
	ID           int64
}

// Rates returns the trip's fixed exchange rates as a rate set keyed by
// foreign currency.
func (t *Trip) Rates() RateSet {
	return RateSet{
		CurrencyEUR: t.RateEURToHUF,
		CurrencyUSD: t.RateUSDToHUF,
		CurrencyHRK: t.RateHRKToHUF,
	}
}

// Expense is one persisted expense record. It carries both the original
// amount/currency and the home-currency amount computed at write time.
type Expense struct {
	Date           time.Time
	CreatedAt      time.Time
	Merchant       string
	Description    string
	RawItemsText   string
	AmountOriginal decimal.Decimal
	AmountHUF      decimal.Decimal
	ID             int64
	TripID         int64
	CategoryID     int64
	SubcategoryID  int64
	Currency       Currency
	PaymentMethod  PaymentMethod
	Provenance     Provenance
	AIParsed       bool
}
