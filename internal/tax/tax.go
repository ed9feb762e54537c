// Package tax decomposes a gross or net amount into subtotal, tax, and total
// per the tenant's configured settings. It is pure computation; which account
// the tax posts against is the posting engine's concern.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
)

// Type selects how the tax component is derived.
type Type string

const (
	// TypePercentage computes tax as a rate applied to the subtotal.
	TypePercentage Type = "percentage"
	// TypeAmount takes the tax component as a fixed amount.
	TypeAmount Type = "amount"
)

// Regime determines which liability/asset accounts tax posts against.
type Regime string

const (
	RegimeSalesTax Regime = "sales_tax"
	RegimeVAT      Regime = "vat"
)

// Settings describes one document's tax treatment.
type Settings struct {
	Enabled bool
	Type    Type
	Rate    decimal.Decimal // percent, for TypePercentage
	Amount  decimal.Decimal // fixed tax, for TypeAmount
	// Inclusive means the anchor amount already contains tax (it is the
	// total); otherwise the anchor is the subtotal.
	Inclusive bool
}

// Breakdown is the decomposition of an amount: Subtotal + TaxAmount == Total.
type Breakdown struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Apply decomposes amount under the given settings. Disabled settings pass
// the amount through untouched.
func Apply(amount decimal.Decimal, s Settings) (Breakdown, error) {
	rounded := money.Round(amount)
	if !s.Enabled {
		return Breakdown{Subtotal: rounded, TaxAmount: decimal.Zero, Total: rounded}, nil
	}

	switch s.Type {
	case TypePercentage:
		if s.Rate.Sign() < 0 {
			return Breakdown{}, model.Validationf("tax.rate", "must not be negative, got %s", s.Rate)
		}
		hundred := decimal.NewFromInt(100)
		if s.Inclusive {
			// amount is the total; solve subtotal = total / (1 + rate/100).
			divisor := hundred.Add(s.Rate)
			subtotal := money.Round(rounded.Mul(hundred).Div(divisor))
			return Breakdown{
				Subtotal:  subtotal,
				TaxAmount: rounded.Sub(subtotal),
				Total:     rounded,
			}, nil
		}
		taxAmount := money.Round(rounded.Mul(s.Rate).Div(hundred))
		return Breakdown{
			Subtotal:  rounded,
			TaxAmount: taxAmount,
			Total:     rounded.Add(taxAmount),
		}, nil

	case TypeAmount:
		taxAmount := money.Round(s.Amount)
		if taxAmount.Sign() < 0 {
			return Breakdown{}, model.Validationf("tax.amount", "must not be negative, got %s", s.Amount)
		}
		if s.Inclusive {
			if taxAmount.Cmp(rounded) > 0 {
				return Breakdown{}, model.Validationf("tax.amount", "tax %s exceeds total %s", taxAmount, rounded)
			}
			return Breakdown{
				Subtotal:  rounded.Sub(taxAmount),
				TaxAmount: taxAmount,
				Total:     rounded,
			}, nil
		}
		return Breakdown{
			Subtotal:  rounded,
			TaxAmount: taxAmount,
			Total:     rounded.Add(taxAmount),
		}, nil

	default:
		return Breakdown{}, model.Validationf("tax.type", "unknown tax type %q", s.Type)
	}
}
