// Package ledger is the append-only transaction store. Every write is a
// balanced double-entry transaction committed atomically; the
// (tenant, reference) uniqueness constraint makes posting idempotent and
// safe under concurrent submission.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

// Store provides posting and balance computation over the ledger tables.
type Store struct {
	db *sqlite.DB
}

// NewStore creates a Store.
func NewStore(db *sqlite.DB) *Store {
	return &Store{db: db}
}

// Document is a human-assigned document number claimed by a transaction
// (invoice number, vendor invoice number). Unique per (tenant, type).
type Document struct {
	Type   string
	Number string
}

// PostParams describes one transaction to post.
type PostParams struct {
	TenantID    string
	Date        time.Time
	Description string
	Reference   string
	Entries     []model.EntryInput
	Documents   []Document
	Operation   string // audit trail operation name, e.g. "post_expense"
}

// Posted is the result of Post. Existing is true when the reference had
// already been posted and the prior transaction was returned unchanged.
type Posted struct {
	Transaction model.Transaction
	Entries     []model.Entry
	Existing    bool
}

// Post validates and commits one balanced transaction. Replaying the same
// (tenant, reference) returns the existing transaction instead of erroring or
// duplicating; two concurrent attempts resolve through the UNIQUE index, so
// exactly one creates the row. Nothing is committed on any failure.
func (s *Store) Post(ctx context.Context, params PostParams) (Posted, error) {
	if params.TenantID == "" {
		return Posted{}, model.Validationf("tenantId", "must not be empty")
	}
	if params.Reference == "" {
		return Posted{}, model.Validationf("reference", "must not be empty")
	}
	if len(params.Entries) == 0 {
		return Posted{}, model.Validationf("entries", "must not be empty")
	}

	// Fast path: reference already posted.
	if existing, err := s.ByReference(ctx, params.TenantID, params.Reference); err == nil {
		entries, err := s.EntriesFor(ctx, existing.ID)
		if err != nil {
			return Posted{}, err
		}
		return Posted{Transaction: existing, Entries: entries, Existing: true}, nil
	} else if !errors.Is(err, model.ErrTransactionNotFound) {
		return Posted{}, err
	}

	resolved, total, err := s.resolveEntries(ctx, params.TenantID, params.Entries)
	if err != nil {
		return Posted{}, err
	}

	txn := model.Transaction{
		ID:          uuid.NewString(),
		TenantID:    params.TenantID,
		Date:        params.Date,
		Description: params.Description,
		Reference:   params.Reference,
		Amount:      total,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, tenant_id, tx_date, description, reference, amount)
			VALUES (?, ?, ?, ?, ?, ?)
		`, txn.ID, txn.TenantID, txn.Date.Format(sqlite.DateFormat), txn.Description, txn.Reference, txn.Amount.StringFixed(2))
		if err != nil {
			return err
		}

		for i := range resolved {
			resolved[i].TransactionID = txn.ID
			var debitID, creditID any
			if resolved[i].DebitAccountID != 0 {
				debitID = resolved[i].DebitAccountID
			}
			if resolved[i].CreditAccountID != 0 {
				creditID = resolved[i].CreditAccountID
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO entries (transaction_id, debit_account_id, credit_account_id, amount, description)
				VALUES (?, ?, ?, ?, ?)
			`, txn.ID, debitID, creditID, resolved[i].Amount.StringFixed(2), resolved[i].Description)
			if err != nil {
				return fmt.Errorf("inserting entry: %w", err)
			}
			resolved[i].ID, _ = res.LastInsertId()
		}

		for _, doc := range params.Documents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO documents (tenant_id, doc_type, doc_number, transaction_id)
				VALUES (?, ?, ?, ?)
			`, params.TenantID, doc.Type, doc.Number, txn.ID)
			if sqlite.IsUniqueViolation(err) {
				return fmt.Errorf("%s %q: %w", doc.Type, doc.Number, model.ErrDuplicateDocumentNumber)
			}
			if err != nil {
				return fmt.Errorf("claiming document number: %w", err)
			}
		}

		return insertAudit(ctx, tx, params.TenantID, params.Operation, params.Reference, txn.ID, params.Description)
	})
	if sqlite.IsUniqueViolation(err) {
		// Lost the race on the reference: the winner's transaction is ours.
		existing, lookupErr := s.ByReference(ctx, params.TenantID, params.Reference)
		if lookupErr != nil {
			return Posted{}, fmt.Errorf("posting transaction: %w", err)
		}
		entries, lookupErr := s.EntriesFor(ctx, existing.ID)
		if lookupErr != nil {
			return Posted{}, lookupErr
		}
		return Posted{Transaction: existing, Entries: entries, Existing: true}, nil
	}
	if err != nil {
		return Posted{}, err
	}

	return Posted{Transaction: txn, Entries: resolved}, nil
}

// resolveEntries validates entry inputs, maps account codes to row IDs, and
// enforces the balance invariant.
func (s *Store) resolveEntries(ctx context.Context, tenantID string, inputs []model.EntryInput) ([]model.Entry, decimal.Decimal, error) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	resolved := make([]model.Entry, 0, len(inputs))

	for i, in := range inputs {
		hasDebit := in.DebitAccount != ""
		hasCredit := in.CreditAccount != ""
		if hasDebit == hasCredit {
			return nil, decimal.Zero, model.Validationf("entries", "entry %d must have exactly one of debit or credit account", i)
		}
		if !money.IsPositive(in.Amount) {
			return nil, decimal.Zero, model.Validationf("entries", "entry %d amount must be positive, got %s", i, in.Amount)
		}
		if !money.TwoPlaces(in.Amount) {
			return nil, decimal.Zero, model.Validationf("entries", "entry %d amount %s has more than 2 decimal places", i, in.Amount)
		}

		code := in.DebitAccount
		if hasCredit {
			code = in.CreditAccount
		}
		acctID, err := s.accountID(ctx, tenantID, code)
		if err != nil {
			return nil, decimal.Zero, err
		}

		e := model.Entry{Amount: in.Amount, Description: in.Description}
		if hasDebit {
			e.DebitAccountID = acctID
			totalDebit = totalDebit.Add(in.Amount)
		} else {
			e.CreditAccountID = acctID
			totalCredit = totalCredit.Add(in.Amount)
		}
		resolved = append(resolved, e)
	}

	if !money.WithinEpsilon(totalDebit, totalCredit) {
		return nil, decimal.Zero, fmt.Errorf("debits %s vs credits %s: %w",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2), model.ErrUnbalancedEntries)
	}
	return resolved, totalDebit, nil
}

func (s *Store) accountID(ctx context.Context, tenantID, code string) (int64, error) {
	var id int64
	err := s.db.SQL().QueryRowContext(ctx, `
		SELECT id FROM accounts WHERE tenant_id = ? AND code = ?
	`, tenantID, code).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("account %s: %w", code, model.ErrAccountNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving account %s: %w", code, err)
	}
	return id, nil
}

// ByReference returns a tenant's transaction by its idempotency reference.
func (s *Store) ByReference(ctx context.Context, tenantID, reference string) (model.Transaction, error) {
	row := s.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, tx_date, description, reference, amount
		FROM transactions WHERE tenant_id = ? AND reference = ?
	`, tenantID, reference)
	return scanTransaction(row)
}

// ByID returns a transaction by its ID.
func (s *Store) ByID(ctx context.Context, id string) (model.Transaction, error) {
	row := s.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, tx_date, description, reference, amount
		FROM transactions WHERE id = ?
	`, id)
	return scanTransaction(row)
}

// EntriesFor returns the entries of one transaction in insertion order.
func (s *Store) EntriesFor(ctx context.Context, transactionID string) ([]model.Entry, error) {
	rows, err := s.db.SQL().QueryContext(ctx, `
		SELECT id, transaction_id, debit_account_id, credit_account_id, amount, description
		FROM entries WHERE transaction_id = ? ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanTransaction(row *sql.Row) (model.Transaction, error) {
	var txn model.Transaction
	var dateStr, amountStr string
	err := row.Scan(&txn.ID, &txn.TenantID, &dateStr, &txn.Description, &txn.Reference, &amountStr)
	if err == sql.ErrNoRows {
		return model.Transaction{}, model.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}
	txn.Date, err = time.Parse(sqlite.DateFormat, dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction date: %w", err)
	}
	txn.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction amount: %w", err)
	}
	return txn, nil
}

func scanEntries(rows *sql.Rows) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var debitID, creditID sql.NullInt64
		var amountStr string
		if err := rows.Scan(&e.ID, &e.TransactionID, &debitID, &creditID, &amountStr, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.DebitAccountID = debitID.Int64
		e.CreditAccountID = creditID.Int64
		var err error
		e.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing entry amount: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
