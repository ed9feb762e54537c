package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/period"
)

// Void posts a reversing transaction for an existing reference: every debit
// becomes a credit and vice versa. Transactions are immutable, so this is the
// only correction path. Voiding twice replays the first reversal.
func (s *Store) Void(ctx context.Context, tenantID, reference string, date time.Time) (Posted, error) {
	original, err := s.ByReference(ctx, tenantID, reference)
	if err != nil {
		return Posted{}, err
	}
	entries, err := s.EntriesFor(ctx, original.ID)
	if err != nil {
		return Posted{}, err
	}

	inputs := make([]model.EntryInput, 0, len(entries))
	for _, e := range entries {
		acct, err := s.accountCode(ctx, e.AccountID())
		if err != nil {
			return Posted{}, err
		}
		in := model.EntryInput{Amount: e.Amount, Description: e.Description}
		if e.IsDebit() {
			in.CreditAccount = acct
		} else {
			in.DebitAccount = acct
		}
		inputs = append(inputs, in)
	}

	return s.Post(ctx, PostParams{
		TenantID:    tenantID,
		Date:        date,
		Description: fmt.Sprintf("Void of %s: %s", reference, original.Description),
		Reference:   period.VoidReference(reference),
		Entries:     inputs,
		Operation:   "void",
	})
}

func (s *Store) accountCode(ctx context.Context, id int64) (string, error) {
	var code string
	err := s.db.SQL().QueryRowContext(ctx, `SELECT code FROM accounts WHERE id = ?`, id).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("resolving account %d: %w", id, err)
	}
	return code, nil
}
