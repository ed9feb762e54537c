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

// ExpenseParams describes one expense event.
type ExpenseParams struct {
	Reference           string
	Date                time.Time
	Description         string
	Vendor              string
	ExpenseAccount      string // chart code; defaults to the general expense account
	Amount              decimal.Decimal
	Tax                 tax.Settings
	PaymentStatus       model.PaymentStatus
	AmountPaid          decimal.Decimal // for partial/overpaid
	VendorInvoiceNumber string          // optional, unique per tenant
}

// PostExpense records an expense: the expense (and any recoverable input tax)
// is debited, and cash and/or accounts payable are credited according to the
// payment status. Idempotent by reference.
func (e *Engine) PostExpense(ctx context.Context, tenantID string, params ExpenseParams) (ledger.Posted, error) {
	if err := validateCommon(params.Reference, params.Vendor, "vendor", params.Date, params.Amount); err != nil {
		return ledger.Posted{}, err
	}
	expenseAccount := params.ExpenseAccount
	if expenseAccount == "" {
		expenseAccount = accounts.CodeGeneralExpense
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

	// Debit side: the expense, with recoverable input tax broken out when the
	// regime allows it and folded into the expense otherwise.
	if taxAccount := e.purchaseTaxAccount(); taxAccount != "" && breakdown.TaxAmount.Sign() > 0 {
		entries = append(entries,
			model.EntryInput{DebitAccount: expenseAccount, Amount: breakdown.Subtotal, Description: params.Vendor},
			model.EntryInput{DebitAccount: taxAccount, Amount: breakdown.TaxAmount, Description: "Input tax: " + params.Vendor},
		)
	} else {
		entries = append(entries,
			model.EntryInput{DebitAccount: expenseAccount, Amount: breakdown.Total, Description: params.Vendor},
		)
	}

	// Credit side by payment status.
	switch status {
	case model.PaymentPaid:
		entries = append(entries,
			model.EntryInput{CreditAccount: accounts.CodeCash, Amount: breakdown.Total, Description: "Payment: " + params.Vendor})
	case model.PaymentUnpaid:
		entries = append(entries,
			model.EntryInput{CreditAccount: accounts.CodeAccountsPayable, Amount: breakdown.Total, Description: "Payable: " + params.Vendor})
	case model.PaymentPartial:
		entries = append(entries,
			model.EntryInput{CreditAccount: accounts.CodeCash, Amount: paid, Description: "Partial payment: " + params.Vendor},
			model.EntryInput{CreditAccount: accounts.CodeAccountsPayable, Amount: breakdown.Total.Sub(paid), Description: "Payable: " + params.Vendor})
	case model.PaymentOverpaid:
		excess := paid.Sub(breakdown.Total)
		entries = append(entries,
			model.EntryInput{CreditAccount: accounts.CodeCash, Amount: paid, Description: "Payment: " + params.Vendor},
			model.EntryInput{DebitAccount: accounts.CodePrepaidExpenses, Amount: excess, Description: "Vendor prepayment: " + params.Vendor})
	}

	var docs []ledger.Document
	if params.VendorInvoiceNumber != "" {
		docs = append(docs, ledger.Document{Type: DocTypeVendorInvoice, Number: params.VendorInvoiceNumber})
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Expense: %s", params.Vendor)
	}

	return e.store.Post(ctx, ledger.PostParams{
		TenantID:    tenantID,
		Date:        params.Date,
		Description: description,
		Reference:   params.Reference,
		Entries:     entries,
		Documents:   docs,
		Operation:   "post_expense",
	})
}
