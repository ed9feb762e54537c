package assets

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
	now    time.Time
}

// setup builds an engine with a controllable clock, seeded for tenant "acme".
func setup(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, accounts.NewRegistry(db).EnsureCoreSet(context.Background(), "acme"))
	store := ledger.NewStore(db)
	f := &fixture{store: store, now: now}
	f.engine = NewEngine(db, store, func() time.Time { return f.now })
	return f
}

func laptop(life int, cost, residual string) RegisterParams {
	return RegisterParams{
		Name:             "MacBook Pro",
		Category:         "computers",
		UniqueKey:        "laptop-001",
		InServiceDate:    date(2025, 1, 15),
		Cost:             dec(cost),
		ResidualValue:    dec(residual),
		UsefulLifeMonths: life,
	}
}

func (f *fixture) balance(t *testing.T, code string) string {
	t.Helper()
	bal, err := f.store.Balance(context.Background(), "acme", code, date(2099, 12, 31))
	require.NoError(t, err)
	return bal.StringFixed(2)
}

func TestMonthlyAmount(t *testing.T) {
	cases := []struct {
		cost, residual string
		life           int
		want           string
	}{
		{"1200.00", "0", 12, "100.00"},
		{"1200.00", "200.00", 12, "83.33"},
		{"1000.00", "1000.00", 12, "0.00"},
		{"1000.00", "1500.00", 12, "0.00"}, // residual clamped to cost
		{"999.99", "0", 36, "27.78"},
	}
	for _, c := range cases {
		a := model.Asset{Cost: dec(c.cost), ResidualValue: dec(c.residual), UsefulLifeMonths: c.life}
		assert.Equal(t, c.want, MonthlyAmount(a).StringFixed(2), "%s/%s/%d", c.cost, c.residual, c.life)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t, date(2025, 2, 1))
	ctx := context.Background()

	params := laptop(12, "1200.00", "0")
	params.Name = ""
	_, err := f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err))

	params = laptop(12, "1200.00", "0")
	params.UniqueKey = ""
	_, err = f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err))

	params = laptop(12, "0", "0")
	_, err = f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err), "cost must be positive")

	params = laptop(12, "1200.00", "-1")
	_, err = f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err), "negative residual is rejected")

	params = laptop(0, "1200.00", "0")
	_, err = f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err), "life must be positive")

	params = laptop(12, "1200.00", "0")
	params.Method = "DDB"
	_, err = f.engine.Register(ctx, "acme", params)
	assert.True(t, model.IsValidation(err), "only straight-line is supported")
}

func TestRegisterDuplicateKey(t *testing.T) {
	f := setup(t, date(2025, 2, 1))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)
	_, err = f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	assert.ErrorIs(t, err, model.ErrAssetExists)
}

func TestRegisterDefaults(t *testing.T) {
	f := setup(t, date(2025, 2, 1))

	asset, err := f.engine.Register(context.Background(), "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)
	assert.Equal(t, model.MethodStraightLine, asset.Method)
	assert.Equal(t, model.AssetActive, asset.Status)
	assert.True(t, asset.AcquisitionDate.Equal(asset.InServiceDate), "acquisition defaults to in-service date")
}

func TestRunSingleElapsedPeriod(t *testing.T) {
	// In service Jan 15, run during February: exactly one event of 100.00.
	f := setup(t, date(2025, 2, 28))
	ctx := context.Background()

	asset, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, result.Posted, 1)
	assert.Equal(t, "2025-02", result.Posted[0].Period)
	assert.Equal(t, "100.00", result.Posted[0].Amount.StringFixed(2))

	again, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, again.Posted)

	events, err := f.engine.Events(ctx, asset.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "still exactly one event after the second run")
}

func TestRunPostsElapsedPeriods(t *testing.T) {
	// In service Jan 15: the in-service month is skipped, February and March
	// are due by March 1.
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	asset, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, result.Posted, 2)
	assert.Equal(t, "2025-02", result.Posted[0].Period)
	assert.Equal(t, "2025-03", result.Posted[1].Period)
	assert.Equal(t, "100.00", result.Posted[0].Amount.StringFixed(2))

	assert.Equal(t, "200.00", f.balance(t, accounts.CodeDepreciationExpense))
	// Contra-asset: credits show as a negative asset balance.
	assert.Equal(t, "-200.00", f.balance(t, accounts.CodeAccumulatedDepreciation))

	events, err := f.engine.Events(ctx, asset.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRunIsIdempotentWithinPeriod(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	first, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	require.NotEmpty(t, first.Posted)

	second, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, second.Posted, "re-running in the same period posts nothing")
	require.Len(t, second.Skipped, 1)
	assert.Equal(t, "up to date", second.Skipped[0].Reason)

	assert.Equal(t, "200.00", f.balance(t, accounts.CodeDepreciationExpense))
}

func TestRunCatchesUpElapsedPeriods(t *testing.T) {
	f := setup(t, date(2025, 7, 10))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	// Feb through Jul inclusive: six periods in one run.
	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, result.Posted, 6)
	assert.Equal(t, "600.00", f.balance(t, accounts.CodeDepreciationExpense))
}

func TestRunFinalPeriodRemainder(t *testing.T) {
	// 1000 over 3 months: 333.33 + 333.33 + 333.34.
	f := setup(t, date(2025, 4, 30))
	ctx := context.Background()

	params := laptop(3, "1000.00", "0")
	asset, err := f.engine.Register(ctx, "acme", params)
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, result.Posted, 3)
	assert.Equal(t, "333.33", result.Posted[0].Amount.StringFixed(2))
	assert.Equal(t, "333.33", result.Posted[1].Amount.StringFixed(2))
	assert.Equal(t, "333.34", result.Posted[2].Amount.StringFixed(2), "final period takes the remainder")

	assert.Equal(t, "-1000.00", f.balance(t, accounts.CodeAccumulatedDepreciation))

	got, err := f.engine.Get(ctx, "acme", asset.UniqueKey)
	require.NoError(t, err)
	assert.Equal(t, model.AssetFullyDepreciated, got.Status)
}

func TestRunNeverExceedsDepreciableBase(t *testing.T) {
	// Clock far past the end of life: total must still cap at cost - residual.
	f := setup(t, date(2030, 1, 1))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "200.00"))
	require.NoError(t, err)

	_, err = f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "-1000.00", f.balance(t, accounts.CodeAccumulatedDepreciation))

	again, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, again.Posted)
}

func TestRunSkipsResidualAtOrAboveCost(t *testing.T) {
	f := setup(t, date(2025, 6, 1))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1000.00", "1000.00"))
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, result.Posted)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "residual value at or above cost", result.Skipped[0].Reason)
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeAccumulatedDepreciation))
}

func TestDisposeHaltsDepreciation(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	asset, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	disposed, err := f.engine.Dispose(ctx, "acme", asset.UniqueKey)
	require.NoError(t, err)
	assert.Equal(t, model.AssetDisposed, disposed.Status)

	result, err := f.engine.Run(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, result.Posted, "disposed assets are excluded from runs")
	assert.Equal(t, "0.00", f.balance(t, accounts.CodeAccumulatedDepreciation))

	// Disposal is terminal and idempotent.
	again, err := f.engine.Dispose(ctx, "acme", asset.UniqueKey)
	require.NoError(t, err)
	assert.Equal(t, model.AssetDisposed, again.Status)
}

func TestDisposeUnknownAsset(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	_, err := f.engine.Dispose(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, model.ErrAssetNotFound)
}

func TestRunPerAssetFailureIsolation(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	// globex has assets but no chart, so its posting fails; acme still runs.
	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)
	broken := laptop(12, "1200.00", "0")
	broken.UniqueKey = "laptop-002"
	_, err = f.engine.Register(ctx, "globex", broken)
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "")
	require.NoError(t, err)
	assert.Len(t, result.Posted, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "laptop-002", result.Failed[0].UniqueKey)
}

func TestRunScopedToTenant(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	_, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	result, err := f.engine.Run(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, result.Posted)
	assert.Empty(t, result.Skipped)
}

func TestListAndGet(t *testing.T) {
	f := setup(t, date(2025, 3, 1))
	ctx := context.Background()

	registered, err := f.engine.Register(ctx, "acme", laptop(12, "1200.00", "0"))
	require.NoError(t, err)

	list, err := f.engine.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, registered.ID, list[0].ID)
	assert.Equal(t, "1200.00", list[0].Cost.StringFixed(2))

	other, err := f.engine.List(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, other)
}
