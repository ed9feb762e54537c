package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
	"github.com/greenbooks-dev/greenbooks/internal/period"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

// Engine schedules and posts depreciation. The clock is injected so runs are
// reproducible in tests; a nil clock means time.Now.
type Engine struct {
	db    *sqlite.DB
	store *ledger.Store
	now   func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(db *sqlite.DB, store *ledger.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{db: db, store: store, now: now}
}

// MonthlyAmount returns the straight-line charge per period:
// (cost - min(residual, cost)) / usefulLifeMonths, floored at zero. A
// residual at or above cost clamps the asset to zero depreciation.
func MonthlyAmount(a model.Asset) decimal.Decimal {
	base := DepreciableBase(a)
	if base.Sign() <= 0 || a.UsefulLifeMonths <= 0 {
		return decimal.Zero
	}
	return money.Round(base.Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))))
}

// DepreciableBase returns cost minus the residual clamped to cost.
func DepreciableBase(a model.Asset) decimal.Decimal {
	residual := a.ResidualValue
	if residual.Cmp(a.Cost) > 0 {
		residual = a.Cost
	}
	return a.Cost.Sub(residual)
}

// PostedEvent is one depreciation period posted by a run.
type PostedEvent struct {
	AssetID       string
	UniqueKey     string
	Period        string
	Amount        decimal.Decimal
	TransactionID string
}

// SkippedAsset is an asset a run left untouched, with the reason.
type SkippedAsset struct {
	AssetID   string
	UniqueKey string
	Reason    string
}

// FailedAsset is an asset whose processing errored; other assets in the same
// run are unaffected.
type FailedAsset struct {
	AssetID   string
	UniqueKey string
	Err       string
}

// RunResult reports per-asset outcomes of one depreciation run.
type RunResult struct {
	Posted  []PostedEvent
	Skipped []SkippedAsset
	Failed  []FailedAsset
}

// Run posts straight-line depreciation for every active asset of a tenant
// (or of all tenants when tenantID is empty), catching up all elapsed
// periods that have no event yet. Re-invocation within a period posts
// nothing new: the (asset, period) key and the ledger reference both gate
// duplicates, so overlapping scheduler and manual runs are safe.
func (e *Engine) Run(ctx context.Context, tenantID string) (RunResult, error) {
	assetList, err := e.activeAssets(ctx, tenantID)
	if err != nil {
		return RunResult{}, err
	}

	var result RunResult
	for _, asset := range assetList {
		posted, skip, err := e.runAsset(ctx, asset)
		if err != nil {
			result.Failed = append(result.Failed, FailedAsset{AssetID: asset.ID, UniqueKey: asset.UniqueKey, Err: err.Error()})
			continue
		}
		if skip != "" {
			result.Skipped = append(result.Skipped, SkippedAsset{AssetID: asset.ID, UniqueKey: asset.UniqueKey, Reason: skip})
			continue
		}
		if len(posted) == 0 {
			result.Skipped = append(result.Skipped, SkippedAsset{AssetID: asset.ID, UniqueKey: asset.UniqueKey, Reason: "up to date"})
			continue
		}
		result.Posted = append(result.Posted, posted...)
	}
	return result, nil
}

// runAsset posts every unbilled elapsed period for one asset. Returns a
// non-empty skip reason instead of events when there is nothing to do.
func (e *Engine) runAsset(ctx context.Context, asset model.Asset) ([]PostedEvent, string, error) {
	base := DepreciableBase(asset)
	if base.Sign() <= 0 {
		return nil, "residual value at or above cost", nil
	}
	monthly := MonthlyAmount(asset)
	if monthly.Sign() <= 0 {
		return nil, "zero periodic amount", nil
	}

	events, err := e.Events(ctx, asset.ID)
	if err != nil {
		return nil, "", err
	}
	accumulated := decimal.Zero
	billed := make(map[string]bool, len(events))
	for _, ev := range events {
		accumulated = accumulated.Add(ev.Amount)
		billed[ev.Period] = true
	}
	if accumulated.Cmp(base) >= 0 {
		if asset.Status == model.AssetActive {
			if err := e.setStatus(ctx, asset.ID, model.AssetFullyDepreciated); err != nil {
				return nil, "", err
			}
		}
		return nil, "fully depreciated", nil
	}

	var posted []PostedEvent
	for _, p := range period.ElapsedSince(asset.InServiceDate, e.now()) {
		if billed[p] {
			continue
		}
		remaining := base.Sub(accumulated)
		if remaining.Sign() <= 0 {
			break
		}
		amount := monthly
		if amount.Cmp(remaining) > 0 {
			amount = remaining // final period takes the remainder
		}

		ev, err := e.postPeriod(ctx, asset, p, amount)
		if err != nil {
			return nil, "", err
		}
		if ev != nil {
			posted = append(posted, *ev)
		}
		accumulated = accumulated.Add(amount)
	}

	if accumulated.Cmp(base) >= 0 {
		if err := e.setStatus(ctx, asset.ID, model.AssetFullyDepreciated); err != nil {
			return nil, "", err
		}
	}
	return posted, "", nil
}

// postPeriod writes one depreciation transaction and its event record. A nil
// event with nil error means another run claimed the period concurrently.
func (e *Engine) postPeriod(ctx context.Context, asset model.Asset, p string, amount decimal.Decimal) (*PostedEvent, error) {
	date, err := period.End(p)
	if err != nil {
		return nil, err
	}

	res, err := e.store.Post(ctx, ledger.PostParams{
		TenantID:    asset.TenantID,
		Date:        date,
		Description: fmt.Sprintf("Depreciation %s: %s", p, asset.Name),
		Reference:   period.DepreciationReference(asset.ID, p),
		Entries: []model.EntryInput{
			{DebitAccount: accounts.CodeDepreciationExpense, Amount: amount, Description: asset.Name},
			{CreditAccount: accounts.CodeAccumulatedDepreciation, Amount: amount, Description: asset.Name},
		},
		Operation: "depreciation",
	})
	if err != nil {
		return nil, err
	}

	_, err = e.db.SQL().ExecContext(ctx, `
		INSERT INTO depreciation_events (asset_id, period, amount, transaction_id)
		VALUES (?, ?, ?, ?)
	`, asset.ID, p, amount.StringFixed(2), res.Transaction.ID)
	if sqlite.IsUniqueViolation(err) {
		// A concurrent run recorded this period between our check and insert.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recording depreciation event: %w", err)
	}

	return &PostedEvent{
		AssetID:       asset.ID,
		UniqueKey:     asset.UniqueKey,
		Period:        p,
		Amount:        amount,
		TransactionID: res.Transaction.ID,
	}, nil
}

// Dispose marks an asset disposed, which is terminal: no further depreciation
// is generated regardless of remaining life. Disposing twice is a no-op.
func (e *Engine) Dispose(ctx context.Context, tenantID, uniqueKey string) (model.Asset, error) {
	asset, err := e.Get(ctx, tenantID, uniqueKey)
	if err != nil {
		return model.Asset{}, err
	}
	if asset.Status == model.AssetDisposed {
		return asset, nil
	}
	if err := e.setStatus(ctx, asset.ID, model.AssetDisposed); err != nil {
		return model.Asset{}, err
	}
	asset.Status = model.AssetDisposed
	return asset, nil
}

func (e *Engine) activeAssets(ctx context.Context, tenantID string) ([]model.Asset, error) {
	q := `
		SELECT id, tenant_id, name, category, unique_key, acquisition_date, in_service_date,
		       cost, residual_value, method, useful_life_months, status
		FROM assets WHERE status = 'ACTIVE'`
	args := []any{}
	if tenantID != "" {
		q += ` AND tenant_id = ?`
		args = append(args, tenantID)
	}
	q += ` ORDER BY tenant_id, unique_key`

	rows, err := e.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying active assets: %w", err)
	}
	defer rows.Close()

	var result []model.Asset
	for rows.Next() {
		a, err := e.scanAssetRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(sqlite.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
