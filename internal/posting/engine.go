// Package posting builds balanced entry sets for business events (expenses,
// invoices, revenue receipts) and commits them through the ledger store.
package posting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
	"github.com/greenbooks-dev/greenbooks/internal/tax"
)

// Document number namespaces within the documents table.
const (
	DocTypeInvoice       = "invoice"
	DocTypeVendorInvoice = "vendor_invoice"
)

// Options configures how tax posts to the chart. The regime decides which
// account receives the tax component; recoverability decides whether purchase
// tax is an input-tax asset or part of the expense.
type Options struct {
	Regime                 tax.Regime
	RecoverablePurchaseTax bool
}

// Engine posts business events as balanced ledger transactions.
type Engine struct {
	store *ledger.Store
	opts  Options
}

// NewEngine creates an Engine.
func NewEngine(store *ledger.Store, opts Options) *Engine {
	if opts.Regime == "" {
		opts.Regime = tax.RegimeSalesTax
	}
	return &Engine{store: store, opts: opts}
}

// settlement validates the payment status against the amounts and normalizes
// the legacy "invoice" alias to unpaid.
func settlement(status model.PaymentStatus, total, amountPaid decimal.Decimal) (model.PaymentStatus, decimal.Decimal, error) {
	if status == "" {
		status = model.PaymentPaid
	}
	if status == "invoice" {
		status = model.PaymentUnpaid
	}
	if !model.ValidPaymentStatus(status) {
		return "", decimal.Zero, model.Validationf("paymentStatus", "unknown status %q", status)
	}
	paid := money.Round(amountPaid)

	switch status {
	case model.PaymentPartial:
		if !money.IsPositive(paid) || paid.Cmp(total) >= 0 {
			return "", decimal.Zero, model.Validationf("amountPaid", "partial payment must be between 0 and %s, got %s", total, paid)
		}
	case model.PaymentOverpaid:
		if paid.Cmp(total) <= 0 {
			return "", decimal.Zero, model.Validationf("amountPaid", "overpayment must exceed %s, got %s", total, paid)
		}
	}
	return status, paid, nil
}

func validateCommon(reference, counterparty, field string, date time.Time, amount decimal.Decimal) error {
	if reference == "" {
		return model.Validationf("reference", "must not be empty")
	}
	if counterparty == "" {
		return model.Validationf(field, "must not be empty")
	}
	if date.IsZero() {
		return model.Validationf("date", "must be set")
	}
	if !money.IsPositive(amount) {
		return model.Validationf("amount", "must be positive, got %s", amount)
	}
	return nil
}

// purchaseTaxAccount returns the account the tax side of a purchase debits,
// or "" when the tax folds into the expense itself.
func (e *Engine) purchaseTaxAccount() string {
	if e.opts.Regime == tax.RegimeVAT && e.opts.RecoverablePurchaseTax {
		return accounts.CodeVATInput
	}
	return ""
}

// salesTaxAccount returns the liability account the tax side of a sale
// credits.
func (e *Engine) salesTaxAccount() string {
	if e.opts.Regime == tax.RegimeVAT {
		return accounts.CodeVATOutput
	}
	return accounts.CodeSalesTaxPayable
}
