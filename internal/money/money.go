// Package money centralizes currency arithmetic policy: two decimal places,
// one epsilon for every balance invariant check.
package money

import "github.com/shopspring/decimal"

var (
	// Epsilon is the tolerance for debit/credit balance comparisons.
	Epsilon = decimal.RequireFromString("0.01")

	// CloseEpsilon is the threshold below which an account balance is treated
	// as already zero during period close.
	CloseEpsilon = decimal.RequireFromString("0.009")
)

// Round normalizes an amount to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// WithinEpsilon reports whether a and b differ by no more than Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(Epsilon) <= 0
}

// Negligible reports whether d is small enough to exclude from closing.
func Negligible(d decimal.Decimal) bool {
	return d.Abs().Cmp(CloseEpsilon) < 0
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// TwoPlaces reports whether d has no more than two decimal places.
func TwoPlaces(d decimal.Decimal) bool {
	hundred := decimal.NewFromInt(100)
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Floor())
}
