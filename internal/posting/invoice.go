package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/tax"
)

// InvoiceParams describes one customer invoice event.
type InvoiceParams struct {
	Reference      string
	Date           time.Time
	Description    string
	Customer       string
	RevenueAccount string // chart code; defaults to service revenue
	Amount         decimal.Decimal
	Tax            tax.Settings
	PaymentStatus  model.PaymentStatus
	AmountPaid     decimal.Decimal
	InvoiceNumber  string // optional, unique per tenant
}

// PostInvoice records a customer invoice: revenue (and output tax) is
// credited, and cash and/or accounts receivable are debited according to the
// payment status. Overpayment is held as a customer credit liability.
// Idempotent by reference.
func (e *Engine) PostInvoice(ctx context.Context, tenantID string, params InvoiceParams) (ledger.Posted, error) {
	return e.postSale(ctx, tenantID, saleParams(params), accounts.CodeCustomerCredits, "Customer credit: ", "post_invoice")
}

// RevenueParams describes one direct revenue recognition event (no invoice
// document, e.g. point-of-sale receipts).
type RevenueParams struct {
	Reference      string
	Date           time.Time
	Description    string
	Customer       string
	RevenueAccount string
	Amount         decimal.Decimal
	Tax            tax.Settings
	PaymentStatus  model.PaymentStatus
	AmountPaid     decimal.Decimal
}

// PostRevenue records revenue like an invoice, except overpayment defers to
// unearned revenue rather than a customer credit. Idempotent by reference.
func (e *Engine) PostRevenue(ctx context.Context, tenantID string, params RevenueParams) (ledger.Posted, error) {
	return e.postSale(ctx, tenantID, saleParams{
		Reference:      params.Reference,
		Date:           params.Date,
		Description:    params.Description,
		Customer:       params.Customer,
		RevenueAccount: params.RevenueAccount,
		Amount:         params.Amount,
		Tax:            params.Tax,
		PaymentStatus:  params.PaymentStatus,
		AmountPaid:     params.AmountPaid,
	}, accounts.CodeUnearnedRevenue, "Unearned revenue: ", "post_revenue")
}

type saleParams InvoiceParams

func (e *Engine) postSale(ctx context.Context, tenantID string, params saleParams, excessAccount, excessPrefix, operation string) (ledger.Posted, error) {
	if err := validateCommon(params.Reference, params.Customer, "customer", params.Date, params.Amount); err != nil {
		return ledger.Posted{}, err
	}
	revenueAccount := params.RevenueAccount
	if revenueAccount == "" {
		revenueAccount = accounts.CodeServiceRevenue
	}

	breakdown, err := tax.Apply(params.Amount, params.Tax)
	if err != nil {
		return ledger.Posted{}, err
	}
	status, paid, err := settlement(params.PaymentStatus, breakdown.Total, params.AmountPaid)
	if err != nil {
		return ledger.Posted{}, err
	}

	var entries []model.EntryInput

	// Debit side by payment status.
	switch status {
	case model.PaymentPaid:
		entries = append(entries,
			model.EntryInput{DebitAccount: accounts.CodeCash, Amount: breakdown.Total, Description: "Receipt: " + params.Customer})
	case model.PaymentUnpaid:
		entries = append(entries,
			model.EntryInput{DebitAccount: accounts.CodeAccountsReceivable, Amount: breakdown.Total, Description: "Receivable: " + params.Customer})
	case model.PaymentPartial:
		entries = append(entries,
			model.EntryInput{DebitAccount: accounts.CodeCash, Amount: paid, Description: "Partial receipt: " + params.Customer},
			model.EntryInput{DebitAccount: accounts.CodeAccountsReceivable, Amount: breakdown.Total.Sub(paid), Description: "Receivable: " + params.Customer})
	case model.PaymentOverpaid:
		excess := paid.Sub(breakdown.Total)
		entries = append(entries,
			model.EntryInput{DebitAccount: accounts.CodeCash, Amount: paid, Description: "Receipt: " + params.Customer},
			model.EntryInput{CreditAccount: excessAccount, Amount: excess, Description: excessPrefix + params.Customer})
	}

	// Credit side: revenue plus output tax.
	entries = append(entries,
		model.EntryInput{CreditAccount: revenueAccount, Amount: breakdown.Subtotal, Description: params.Customer})
	if breakdown.TaxAmount.Sign() > 0 {
		entries = append(entries,
			model.EntryInput{CreditAccount: e.salesTaxAccount(), Amount: breakdown.TaxAmount, Description: "Output tax: " + params.Customer})
	}

	var docs []ledger.Document
	if params.InvoiceNumber != "" {
		docs = append(docs, ledger.Document{Type: DocTypeInvoice, Number: params.InvoiceNumber})
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Sale: %s", params.Customer)
	}

	return e.store.Post(ctx, ledger.PostParams{
		TenantID:    tenantID,
		Date:        params.Date,
		Description: description,
		Reference:   params.Reference,
		Entries:     entries,
		Documents:   docs,
		Operation:   operation,
	})
}
