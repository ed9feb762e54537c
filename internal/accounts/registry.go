// Package accounts is the chart-of-accounts registry: typed,
// normal-balance-tagged ledger accounts, unique by code per tenant.
package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

// Registry provides lookup and administration of the chart of accounts.
type Registry struct {
	db *sqlite.DB
}

// NewRegistry creates a Registry backed by the store.
func NewRegistry(db *sqlite.DB) *Registry {
	return &Registry{db: db}
}

// Resolve returns the account with the given code for a tenant.
func (r *Registry) Resolve(ctx context.Context, tenantID, code string) (model.Account, error) {
	return scanAccount(r.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, type, normal_balance, core
		FROM accounts WHERE tenant_id = ? AND code = ?
	`, tenantID, code))
}

// ResolveID returns the account with the given row ID.
func (r *Registry) ResolveID(ctx context.Context, id int64) (model.Account, error) {
	return scanAccount(r.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, type, normal_balance, core
		FROM accounts WHERE id = ?
	`, id))
}

// List returns a tenant's full chart ordered by code.
func (r *Registry) List(ctx context.Context, tenantID string) ([]model.Account, error) {
	return r.query(ctx, `
		SELECT id, tenant_id, code, name, type, normal_balance, core
		FROM accounts WHERE tenant_id = ? ORDER BY code
	`, tenantID)
}

// ByType returns a tenant's accounts of one type ordered by code.
func (r *Registry) ByType(ctx context.Context, tenantID string, t model.AccountType) ([]model.Account, error) {
	return r.query(ctx, `
		SELECT id, tenant_id, code, name, type, normal_balance, core
		FROM accounts WHERE tenant_id = ? AND type = ? ORDER BY code
	`, tenantID, string(t))
}

// Create adds a new account. The normal balance is derived from the type.
func (r *Registry) Create(ctx context.Context, tenantID, code, name string, t model.AccountType) (model.Account, error) {
	if code == "" {
		return model.Account{}, model.Validationf("code", "must not be empty")
	}
	if name == "" {
		return model.Account{}, model.Validationf("name", "must not be empty")
	}
	if !model.ValidAccountType(t) {
		return model.Account{}, model.Validationf("type", "unknown account type %q", t)
	}

	nb := model.NormalBalanceFor(t)
	res, err := r.db.SQL().ExecContext(ctx, `
		INSERT INTO accounts (tenant_id, code, name, type, normal_balance, core)
		VALUES (?, ?, ?, ?, ?, 0)
	`, tenantID, code, name, string(t), string(nb))
	if sqlite.IsUniqueViolation(err) {
		return model.Account{}, fmt.Errorf("account %s: %w", code, model.ErrAccountExists)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}
	return model.Account{ID: id, TenantID: tenantID, Code: code, Name: name, Type: t, NormalBalance: nb}, nil
}

// UpdateParams holds the optional administrative edits to an account.
type UpdateParams struct {
	Name *string
	Type *model.AccountType
}

// Update applies an administrative edit. A type change re-derives the normal
// balance so the two can never contradict.
func (r *Registry) Update(ctx context.Context, tenantID, code string, params UpdateParams) (model.Account, error) {
	acct, err := r.Resolve(ctx, tenantID, code)
	if err != nil {
		return model.Account{}, err
	}
	if params.Name != nil {
		if *params.Name == "" {
			return model.Account{}, model.Validationf("name", "must not be empty")
		}
		acct.Name = *params.Name
	}
	if params.Type != nil {
		if !model.ValidAccountType(*params.Type) {
			return model.Account{}, model.Validationf("type", "unknown account type %q", *params.Type)
		}
		acct.Type = *params.Type
		acct.NormalBalance = model.NormalBalanceFor(*params.Type)
	}

	_, err = r.db.SQL().ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, normal_balance = ? WHERE id = ?
	`, acct.Name, string(acct.Type), string(acct.NormalBalance), acct.ID)
	if err != nil {
		return model.Account{}, fmt.Errorf("updating account: %w", err)
	}
	return acct, nil
}

// Delete removes an account. Core accounts and accounts referenced by ledger
// entries are protected.
func (r *Registry) Delete(ctx context.Context, tenantID, code string) error {
	acct, err := r.Resolve(ctx, tenantID, code)
	if err != nil {
		return err
	}
	if acct.Core {
		return fmt.Errorf("account %s: %w", code, model.ErrAccountProtected)
	}

	var n int
	err = r.db.SQL().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE debit_account_id = ? OR credit_account_id = ?
	`, acct.ID, acct.ID).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking account usage: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("account %s: %w", code, model.ErrAccountInUse)
	}

	_, err = r.db.SQL().ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, acct.ID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

// EnsureCoreSet upserts the baseline chart for a tenant, idempotent by code.
// Existing accounts keep their name and type; missing ones are created and
// flagged core.
func (r *Registry) EnsureCoreSet(ctx context.Context, tenantID string) error {
	for _, a := range CoreChart() {
		_, err := r.db.SQL().ExecContext(ctx, `
			INSERT INTO accounts (tenant_id, code, name, type, normal_balance, core)
			VALUES (?, ?, ?, ?, ?, 1)
			ON CONFLICT(tenant_id, code) DO UPDATE SET core = 1
		`, tenantID, a.Code, a.Name, string(a.Type), string(model.NormalBalanceFor(a.Type)))
		if err != nil {
			return fmt.Errorf("seeding account %s: %w", a.Code, err)
		}
	}
	return nil
}

func (r *Registry) query(ctx context.Context, q string, args ...any) ([]model.Account, error) {
	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var t, nb string
	var core int
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &t, &nb, &core)
	if err == sql.ErrNoRows {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	a.Type = model.AccountType(t)
	a.NormalBalance = model.NormalBalance(nb)
	a.Core = core == 1
	return a, nil
}
