// Package currency converts amounts between the supported currency codes
// and the home currency using trip-scoped fixed exchange rates.
//
// Conversion is deterministic and side-effect-free: repeated calls with
// identical inputs yield identical decimals. No rounding happens here;
// formatting for display is a presentation concern.
package currency

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

// ToHome converts amount from the given currency to the home currency.
// Home-currency amounts pass through unchanged.
func ToHome(amount decimal.Decimal, cur model.Currency, rates model.RateSet) (decimal.Decimal, error) {
	if cur == model.HomeCurrency {
		return amount, nil
	}
	rate, err := rateFor(cur, rates)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

// FromHome converts a home-currency amount back to the given currency. It
// is the exact multiplicative inverse of ToHome.
func FromHome(homeAmount decimal.Decimal, cur model.Currency, rates model.RateSet) (decimal.Decimal, error) {
	if cur == model.HomeCurrency {
		return homeAmount, nil
	}
	rate, err := rateFor(cur, rates)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return homeAmount.Div(rate), nil
}

func rateFor(cur model.Currency, rates model.RateSet) (decimal.Decimal, error) {
	if !cur.Valid() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", common.ErrUnknownCurrency, cur)
	}
	rate, ok := rates[cur]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no rate for %s", common.ErrUnknownCurrency, cur)
	}
	if rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive rate for %s", common.ErrUnknownCurrency, cur)
	}
	return rate, nil
}
