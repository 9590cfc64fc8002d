package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
)

var symbols = map[model.Currency]string{
	model.CurrencyHUF: "Ft",
	model.CurrencyEUR: "€",
	model.CurrencyUSD: "$",
	model.CurrencyHRK: "kn",
}

// Symbol returns the display symbol for a currency.
func Symbol(cur model.Currency) string {
	return symbols[cur]
}

// Format renders an amount for display: "123,456 Ft", "€45.50", "$10",
// "123 kn". Forint and kuna symbols follow the number; euro and dollar
// precede it.
func Format(amount decimal.Decimal, cur model.Currency, decimals bool) string {
	places := int32(0)
	if decimals {
		places = 2
	}
	formatted := groupThousands(amount.StringFixed(places))

	switch cur {
	case model.CurrencyHUF, model.CurrencyHRK:
		return formatted + " " + symbols[cur]
	default:
		return symbols[cur] + formatted
	}
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
