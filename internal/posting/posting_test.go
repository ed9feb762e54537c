package posting

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
	"github.com/greenbooks-dev/greenbooks/internal/tax"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type fixture struct {
	engine *Engine
	store  *ledger.Store
}

func setup(t *testing.T, opts Options) fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, accounts.NewRegistry(db).EnsureCoreSet(context.Background(), "acme"))
	store := ledger.NewStore(db)
	return fixture{engine: NewEngine(store, opts), store: store}
}

func (f fixture) balance(t *testing.T, code string) string {
	t.Helper()
	bal, err := f.store.Balance(context.Background(), "acme", code, date(2025, 12, 31))
	require.NoError(t, err)
	return bal.StringFixed(2)
}

func percentTax(rate string) tax.Settings {
	return tax.Settings{Enabled: true, Type: tax.TypePercentage, Rate: dec(rate)}
}

func TestPostExpensePaid(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference: "exp-001",
		Date:      date(2025, 1, 10),
		Vendor:    "Staples",
		Amount:    dec("250.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "250.00", f.balance(t, accounts.CodeGeneralExpense))
	assert.Equal(t, "-250.00", f.balance(t, accounts.CodeCash))
}

func TestPostExpenseUnpaid(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference:     "exp-001",
		Date:          date(2025, 1, 10),
		Vendor:        "Staples",
		Amount:        dec("250.00"),
		PaymentStatus: model.PaymentUnpaid,
	})
	require.NoError(t, err)

	assert.Equal(t, "250.00", f.balance(t, accounts.CodeGeneralExpense))
	assert.Equal(t, "250.00", f.balance(t, accounts.CodeAccountsPayable))
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeCash))
}

func TestPostExpensePartial(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference:     "exp-001",
		Date:          date(2025, 1, 10),
		Vendor:        "Staples",
		Amount:        dec("250.00"),
		PaymentStatus: model.PaymentPartial,
		AmountPaid:    dec("100.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "-100.00", f.balance(t, accounts.CodeCash))
	assert.Equal(t, "150.00", f.balance(t, accounts.CodeAccountsPayable))
}

func TestPostExpenseOverpaid(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference:     "exp-001",
		Date:          date(2025, 1, 10),
		Vendor:        "Staples",
		Amount:        dec("250.00"),
		PaymentStatus: model.PaymentOverpaid,
		AmountPaid:    dec("300.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "-300.00", f.balance(t, accounts.CodeCash))
	assert.Equal(t, "50.00", f.balance(t, accounts.CodePrepaidExpenses))
	assert.Equal(t, "250.00", f.balance(t, accounts.CodeGeneralExpense))
}

func TestPostExpensePartialBounds(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	base := ExpenseParams{
		Reference:     "exp-001",
		Date:          date(2025, 1, 10),
		Vendor:        "Staples",
		Amount:        dec("250.00"),
		PaymentStatus: model.PaymentPartial,
	}

	base.AmountPaid = decimal.Zero
	_, err := f.engine.PostExpense(ctx, "acme", base)
	assert.True(t, model.IsValidation(err))

	base.AmountPaid = dec("250.00")
	_, err = f.engine.PostExpense(ctx, "acme", base)
	assert.True(t, model.IsValidation(err), "partial must be strictly below the total")

	base.PaymentStatus = model.PaymentOverpaid
	_, err = f.engine.PostExpense(ctx, "acme", base)
	assert.True(t, model.IsValidation(err), "overpaid must strictly exceed the total")
}

func TestPostExpenseSalesTaxFoldsIntoExpense(t *testing.T) {
	f := setup(t, Options{Regime: tax.RegimeSalesTax})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference: "exp-001",
		Date:      date(2025, 1, 10),
		Vendor:    "Staples",
		Amount:    dec("100.00"),
		Tax:       percentTax("7"),
	})
	require.NoError(t, err)

	// Non-recoverable tax is part of the cost.
	assert.Equal(t, "107.00", f.balance(t, accounts.CodeGeneralExpense))
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeVATInput))
}

func TestPostExpenseRecoverableVAT(t *testing.T) {
	f := setup(t, Options{Regime: tax.RegimeVAT, RecoverablePurchaseTax: true})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference: "exp-001",
		Date:      date(2025, 1, 10),
		Vendor:    "Staples",
		Amount:    dec("100.00"),
		Tax:       percentTax("19"),
	})
	require.NoError(t, err)

	assert.Equal(t, "100.00", f.balance(t, accounts.CodeGeneralExpense))
	assert.Equal(t, "19.00", f.balance(t, accounts.CodeVATInput))
	assert.Equal(t, "-119.00", f.balance(t, accounts.CodeCash))
}

func TestPostExpenseCustomAccount(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostExpense(context.Background(), "acme", ExpenseParams{
		Reference:      "exp-001",
		Date:           date(2025, 1, 10),
		Vendor:         "GitHub",
		ExpenseAccount: accounts.CodeSoftwareExpense,
		Amount:         dec("4.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", f.balance(t, accounts.CodeSoftwareExpense))
}

func TestPostExpenseValidation(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	_, err := f.engine.PostExpense(ctx, "acme", ExpenseParams{Date: date(2025, 1, 1), Vendor: "X", Amount: dec("1")})
	assert.True(t, model.IsValidation(err), "missing reference")
	_, err = f.engine.PostExpense(ctx, "acme", ExpenseParams{Reference: "r", Date: date(2025, 1, 1), Amount: dec("1")})
	assert.True(t, model.IsValidation(err), "missing vendor")
	_, err = f.engine.PostExpense(ctx, "acme", ExpenseParams{Reference: "r", Vendor: "X", Amount: dec("1")})
	assert.True(t, model.IsValidation(err), "missing date")
	_, err = f.engine.PostExpense(ctx, "acme", ExpenseParams{Reference: "r", Date: date(2025, 1, 1), Vendor: "X", Amount: dec("-1")})
	assert.True(t, model.IsValidation(err), "negative amount")
	_, err = f.engine.PostExpense(ctx, "acme", ExpenseParams{Reference: "r", Date: date(2025, 1, 1), Vendor: "X", Amount: dec("1"), PaymentStatus: "maybe"})
	assert.True(t, model.IsValidation(err), "unknown status")
}

func TestPostInvoiceUnpaidWithTax(t *testing.T) {
	f := setup(t, Options{Regime: tax.RegimeSalesTax})
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("1000.00"),
		Tax:           percentTax("7"),
		PaymentStatus: model.PaymentUnpaid,
		InvoiceNumber: "INV-2025-001",
	})
	require.NoError(t, err)

	assert.Equal(t, "1070.00", f.balance(t, accounts.CodeAccountsReceivable))
	assert.Equal(t, "1000.00", f.balance(t, accounts.CodeServiceRevenue))
	assert.Equal(t, "70.00", f.balance(t, accounts.CodeSalesTaxPayable))
}

func TestPostInvoiceVATRegime(t *testing.T) {
	f := setup(t, Options{Regime: tax.RegimeVAT})
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("1000.00"),
		Tax:           percentTax("19"),
		PaymentStatus: model.PaymentPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, "190.00", f.balance(t, accounts.CodeVATOutput))
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeSalesTaxPayable))
}

func TestPostInvoiceInclusiveTax(t *testing.T) {
	f := setup(t, Options{})
	settings := percentTax("7")
	settings.Inclusive = true
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("107.00"),
		Tax:           settings,
		PaymentStatus: model.PaymentPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, "107.00", f.balance(t, accounts.CodeCash))
	assert.Equal(t, "100.00", f.balance(t, accounts.CodeServiceRevenue))
	assert.Equal(t, "7.00", f.balance(t, accounts.CodeSalesTaxPayable))
}

func TestPostInvoicePartial(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("1000.00"),
		PaymentStatus: model.PaymentPartial,
		AmountPaid:    dec("400.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "400.00", f.balance(t, accounts.CodeCash))
	assert.Equal(t, "600.00", f.balance(t, accounts.CodeAccountsReceivable))
}

func TestPostInvoiceOverpaidGoesToCustomerCredits(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("1000.00"),
		PaymentStatus: model.PaymentOverpaid,
		AmountPaid:    dec("1100.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1100.00", f.balance(t, accounts.CodeCash))
	assert.Equal(t, "100.00", f.balance(t, accounts.CodeCustomerCredits))
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeUnearnedRevenue))
}

func TestPostRevenueOverpaidDefersToUnearned(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostRevenue(context.Background(), "acme", RevenueParams{
		Reference:     "rev-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("1000.00"),
		PaymentStatus: model.PaymentOverpaid,
		AmountPaid:    dec("1100.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "100.00", f.balance(t, accounts.CodeUnearnedRevenue))
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeCustomerCredits))
}

func TestInvoiceStatusAliasInvoice(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.PostInvoice(context.Background(), "acme", InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("500.00"),
		PaymentStatus: "invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, "500.00", f.balance(t, accounts.CodeAccountsReceivable))
}

func TestInvoiceNumberConflictVersusReplay(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	params := InvoiceParams{
		Reference:     "inv-001",
		Date:          date(2025, 1, 10),
		Customer:      "Initech",
		Amount:        dec("500.00"),
		PaymentStatus: model.PaymentUnpaid,
		InvoiceNumber: "INV-100",
	}
	first, err := f.engine.PostInvoice(ctx, "acme", params)
	require.NoError(t, err)

	// Same reference replays.
	replay, err := f.engine.PostInvoice(ctx, "acme", params)
	require.NoError(t, err)
	assert.True(t, replay.Existing)
	assert.Equal(t, first.Transaction.ID, replay.Transaction.ID)

	// New reference reusing the number conflicts.
	params.Reference = "inv-002"
	_, err = f.engine.PostInvoice(ctx, "acme", params)
	assert.ErrorIs(t, err, model.ErrDuplicateDocumentNumber)
}

func TestExpenseReplayIdempotent(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	params := ExpenseParams{
		Reference: "exp-001",
		Date:      date(2025, 1, 10),
		Vendor:    "Staples",
		Amount:    dec("250.00"),
	}
	_, err := f.engine.PostExpense(ctx, "acme", params)
	require.NoError(t, err)
	replay, err := f.engine.PostExpense(ctx, "acme", params)
	require.NoError(t, err)
	assert.True(t, replay.Existing)

	assert.Equal(t, "250.00", f.balance(t, accounts.CodeGeneralExpense))
}
