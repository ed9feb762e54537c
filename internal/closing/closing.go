// Package closing computes period-end closing entries: temporary revenue and
// expense balances are zeroed into retained earnings as one balanced
// transaction per as-of date.
package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
	"github.com/greenbooks-dev/greenbooks/internal/period"
)

// Engine derives closing entries from accumulated ledger balances.
type Engine struct {
	store *ledger.Store
}

// NewEngine creates an Engine.
func NewEngine(store *ledger.Store) *Engine {
	return &Engine{store: store}
}

// Result reports the outcome of a period close.
type Result struct {
	IsExisting    bool
	Closed        bool
	TransactionID string
	NetIncome     decimal.Decimal
	Message       string
}

// ClosePeriod zeroes every nonzero revenue and expense balance as of asOf
// into retained earnings. The reference is deterministic per as-of date, so
// re-invocation returns the existing closing transaction unchanged. When no
// balance exceeds the closing tolerance, nothing is posted.
func (e *Engine) ClosePeriod(ctx context.Context, tenantID string, asOf time.Time) (Result, error) {
	if tenantID == "" {
		return Result{}, model.Validationf("tenantId", "must not be empty")
	}
	reference := period.ClosingReference(asOf)

	if existing, err := e.store.ByReference(ctx, tenantID, reference); err == nil {
		return Result{IsExisting: true, Closed: true, TransactionID: existing.ID}, nil
	} else if !errors.Is(err, model.ErrTransactionNotFound) {
		return Result{}, err
	}

	balances, err := e.store.BalancesByType(ctx, tenantID, asOf,
		model.AccountTypeRevenue, model.AccountTypeExpense)
	if err != nil {
		return Result{}, err
	}

	var entries []model.EntryInput
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, ab := range balances {
		if money.Negligible(ab.Balance) {
			continue
		}
		abs := ab.Balance.Abs()
		// Zeroing posts against the account's normal side: a normally
		// positive balance is reversed, a contra balance goes the other way.
		closeWithDebit := ab.Account.Type == model.AccountTypeRevenue
		if ab.Balance.Sign() < 0 {
			closeWithDebit = !closeWithDebit
		}
		if closeWithDebit {
			entries = append(entries, model.EntryInput{
				DebitAccount: ab.Account.Code,
				Amount:       abs,
				Description:  "Close " + ab.Account.Name,
			})
			totalDebits = totalDebits.Add(abs)
		} else {
			entries = append(entries, model.EntryInput{
				CreditAccount: ab.Account.Code,
				Amount:        abs,
				Description:   "Close " + ab.Account.Name,
			})
			totalCredits = totalCredits.Add(abs)
		}
	}

	if len(entries) == 0 {
		return Result{Message: "Nothing to close"}, nil
	}

	// Net income credits retained earnings; net loss debits it.
	net := totalDebits.Sub(totalCredits)
	switch {
	case net.Sign() > 0:
		entries = append(entries, model.EntryInput{
			CreditAccount: accounts.CodeRetainedEarnings,
			Amount:        net,
			Description:   "Net income to retained earnings",
		})
		totalCredits = totalCredits.Add(net)
	case net.Sign() < 0:
		entries = append(entries, model.EntryInput{
			DebitAccount: accounts.CodeRetainedEarnings,
			Amount:       net.Abs(),
			Description:  "Net loss to retained earnings",
		})
		totalDebits = totalDebits.Add(net.Abs())
	}

	// Structurally impossible to fail given the construction; a trip here
	// means a defect upstream.
	if !money.WithinEpsilon(totalDebits, totalCredits) {
		return Result{}, fmt.Errorf("debits %s vs credits %s: %w",
			totalDebits.StringFixed(2), totalCredits.StringFixed(2), model.ErrClosingNotBalanced)
	}

	posted, err := e.store.Post(ctx, ledger.PostParams{
		TenantID:    tenantID,
		Date:        asOf,
		Description: fmt.Sprintf("Closing entries as of %s", asOf.Format("2006-01-02")),
		Reference:   reference,
		Entries:     entries,
		Operation:   "close_period",
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		IsExisting:    posted.Existing,
		Closed:        true,
		TransactionID: posted.Transaction.ID,
		NetIncome:     net,
	}, nil
}
