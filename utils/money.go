package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders v with two decimals and comma thousands separators.
func FormatAmount(v float64) string {
	fixed := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		whole, frac = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// FormatMoney prefixes the formatted amount with the currency code.
func FormatMoney(currency string, v float64) string {
	if currency == "" {
		return FormatAmount(v)
	}
	return currency + " " + FormatAmount(v)
}
