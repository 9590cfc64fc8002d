// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one of the closed set of currency codes the ledger understands.
type Currency string

// Supported currency codes.
const (
	CurrencyHUF Currency = "HUF"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyHRK Currency = "HRK"
)

// HomeCurrency is the reporting currency all budgets and totals are expressed in.
const HomeCurrency = CurrencyHUF

// Currencies lists every supported currency code in canonical order.
var Currencies = []Currency{CurrencyHUF, CurrencyEUR, CurrencyUSD, CurrencyHRK}

// Valid reports whether c is one of the supported currency codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyHUF, CurrencyEUR, CurrencyUSD, CurrencyHRK:
		return true
	}
	return false
}

// RateSet holds a trip's fixed exchange rates, one per foreign currency,
// each meaning "1 unit of foreign currency = N HUF". The home currency has
// an implicit rate of 1 and never appears in the map.
type RateSet map[Currency]decimal.Decimal

// DateOnly truncates t to its calendar date in UTC. Transaction dates carry
// no time-of-day semantics.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
