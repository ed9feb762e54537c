package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

// Balance computes an account's running balance as of a date by summing
// signed entries. Debit-normal accounts accumulate debits minus credits;
// credit-normal accounts the reverse.
func (s *Store) Balance(ctx context.Context, tenantID, code string, asOf time.Time) (decimal.Decimal, error) {
	acct, err := s.account(ctx, tenantID, code)
	if err != nil {
		return decimal.Zero, err
	}
	return s.balanceOf(ctx, acct, asOf)
}

// AccountBalance pairs an account with its signed balance.
type AccountBalance struct {
	Account model.Account
	Balance decimal.Decimal
}

// BalancesByType returns balances for every account of the given types as of
// a date, in code order.
func (s *Store) BalancesByType(ctx context.Context, tenantID string, asOf time.Time, types ...model.AccountType) ([]AccountBalance, error) {
	var result []AccountBalance
	for _, t := range types {
		rows, err := s.db.SQL().QueryContext(ctx, `
			SELECT id, tenant_id, code, name, type, normal_balance, core
			FROM accounts WHERE tenant_id = ? AND type = ? ORDER BY code
		`, tenantID, string(t))
		if err != nil {
			return nil, fmt.Errorf("querying accounts: %w", err)
		}
		accts, err := collectAccounts(rows)
		if err != nil {
			return nil, err
		}
		for _, acct := range accts {
			bal, err := s.balanceOf(ctx, acct, asOf)
			if err != nil {
				return nil, err
			}
			result = append(result, AccountBalance{Account: acct, Balance: bal})
		}
	}
	return result, nil
}

// AccountEntry is one ledger line for drill-down, joined with its transaction.
type AccountEntry struct {
	Entry       model.Entry
	Date        time.Time
	Reference   string
	Description string
}

// ListEntries returns the most recent entries touching an account, newest
// first, capped at limit.
func (s *Store) ListEntries(ctx context.Context, tenantID, code string, limit int) ([]AccountEntry, error) {
	acct, err := s.account(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT e.id, e.transaction_id, e.debit_account_id, e.credit_account_id, e.amount, e.description,
		       t.tx_date, t.reference, t.description
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE t.tenant_id = ? AND (e.debit_account_id = ? OR e.credit_account_id = ?)
		ORDER BY t.tx_date DESC, e.id DESC
		LIMIT ?
	`, tenantID, acct.ID, acct.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying account entries: %w", err)
	}
	defer rows.Close()

	var result []AccountEntry
	for rows.Next() {
		var ae AccountEntry
		var debitID, creditID sql.NullInt64
		var amountStr, dateStr string
		if err := rows.Scan(&ae.Entry.ID, &ae.Entry.TransactionID, &debitID, &creditID,
			&amountStr, &ae.Entry.Description, &dateStr, &ae.Reference, &ae.Description); err != nil {
			return nil, fmt.Errorf("scanning account entry: %w", err)
		}
		ae.Entry.DebitAccountID = debitID.Int64
		ae.Entry.CreditAccountID = creditID.Int64
		ae.Entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing entry amount: %w", err)
		}
		ae.Date, err = time.Parse(sqlite.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing entry date: %w", err)
		}
		result = append(result, ae)
	}
	return result, rows.Err()
}

func (s *Store) balanceOf(ctx context.Context, acct model.Account, asOf time.Time) (decimal.Decimal, error) {
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT e.debit_account_id, e.amount
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE (e.debit_account_id = ? OR e.credit_account_id = ?) AND t.tx_date <= ?
	`, acct.ID, acct.ID, asOf.Format(sqlite.DateFormat))
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying balance: %w", err)
	}
	defer rows.Close()

	debits := decimal.Zero
	credits := decimal.Zero
	for rows.Next() {
		var debitID sql.NullInt64
		var amountStr string
		if err := rows.Scan(&debitID, &amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("scanning balance row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing balance amount: %w", err)
		}
		if debitID.Valid && debitID.Int64 == acct.ID {
			debits = debits.Add(amount)
		} else {
			credits = credits.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}

	if acct.NormalBalance == model.NormalDebit {
		return debits.Sub(credits), nil
	}
	return credits.Sub(debits), nil
}

func (s *Store) account(ctx context.Context, tenantID, code string) (model.Account, error) {
	var a model.Account
	var t, nb string
	var core int
	err := s.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, type, normal_balance, core
		FROM accounts WHERE tenant_id = ? AND code = ?
	`, tenantID, code).Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &t, &nb, &core)
	if err == sql.ErrNoRows {
		return model.Account{}, fmt.Errorf("account %s: %w", code, model.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("resolving account %s: %w", code, err)
	}
	a.Type = model.AccountType(t)
	a.NormalBalance = model.NormalBalance(nb)
	a.Core = core == 1
	return a, nil
}

func collectAccounts(rows *sql.Rows) ([]model.Account, error) {
	defer rows.Close()
	var result []model.Account
	for rows.Next() {
		var a model.Account
		var t, nb string
		var core int
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &t, &nb, &core); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(t)
		a.NormalBalance = model.NormalBalance(nb)
		a.Core = core == 1
		result = append(result, a)
	}
	return result, rows.Err()
}
