// Package money renders decimal amounts for display. Amounts are kept
// unrounded everywhere else; rounding happens only here.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits shown to shoppers.
const Places = 2

// Round rounds half away from zero to cents.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// Format renders an amount with exactly two fractional digits, e.g. "25.98".
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Places)
}

// FormatUSD renders an amount with a leading dollar sign, e.g. "$5.99".
func FormatUSD(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + Format(amount.Neg())
	}
	return "$" + Format(amount)
}

// HasCents reports whether the amount fits two-digit cents precision.
func HasCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(Places))
}
