package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable balanced ledger transaction. Reference is the
// caller-supplied idempotency key, unique per tenant; corrections are modeled
// as new reversing transactions, never edits.
type Transaction struct {
	ID          string // uuid
	TenantID    string
	Date        time.Time
	Description string
	Reference   string
	Amount      decimal.Decimal // informational total
	CreatedAt   time.Time
}

// Entry is one side of a double-entry. Exactly one of DebitAccountID or
// CreditAccountID is set, and Amount is strictly positive.
type Entry struct {
	ID              int64
	TransactionID   string
	DebitAccountID  int64 // 0 if credit side
	CreditAccountID int64 // 0 if debit side
	Amount          decimal.Decimal
	Description     string
}

// IsDebit reports whether the entry is a debit.
func (e Entry) IsDebit() bool { return e.DebitAccountID != 0 }

// AccountID returns whichever account the entry touches.
func (e Entry) AccountID() int64 {
	if e.IsDebit() {
		return e.DebitAccountID
	}
	return e.CreditAccountID
}

// EntryInput describes one entry of a transaction to be posted, addressed by
// account code rather than row ID.
type EntryInput struct {
	DebitAccount  string // account code, empty if credit side
	CreditAccount string // account code, empty if debit side
	Amount        decimal.Decimal
	Description   string
}

// PaymentStatus is the settlement state of a posted document.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentOverpaid PaymentStatus = "overpaid"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartial, PaymentOverpaid:
		return true
	}
	return false
}
