// Package assets owns fixed assets and their depreciation schedule:
// registration, straight-line runs with catch-up, and disposal.
package assets

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/money"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

// RegisterParams describes one asset to register.
type RegisterParams struct {
	Name             string
	Category         string
	UniqueKey        string
	AcquisitionDate  time.Time
	InServiceDate    time.Time
	Cost             decimal.Decimal
	ResidualValue    decimal.Decimal
	Method           model.DepreciationMethod
	UsefulLifeMonths int
}

// Register validates and stores a new asset. Reusing a unique key within a
// tenant is a conflict; the same key may coexist across tenants.
func (e *Engine) Register(ctx context.Context, tenantID string, params RegisterParams) (model.Asset, error) {
	if tenantID == "" {
		return model.Asset{}, model.Validationf("tenantId", "must not be empty")
	}
	if params.Name == "" {
		return model.Asset{}, model.Validationf("name", "must not be empty")
	}
	if params.UniqueKey == "" {
		return model.Asset{}, model.Validationf("uniqueKey", "must not be empty")
	}
	if params.InServiceDate.IsZero() {
		return model.Asset{}, model.Validationf("inServiceDate", "must be set")
	}
	if !money.IsPositive(params.Cost) {
		return model.Asset{}, model.Validationf("cost", "must be positive, got %s", params.Cost)
	}
	if params.ResidualValue.Sign() < 0 {
		return model.Asset{}, model.Validationf("residualValue", "must not be negative, got %s", params.ResidualValue)
	}
	if params.UsefulLifeMonths <= 0 {
		return model.Asset{}, model.Validationf("usefulLifeMonths", "must be positive, got %d", params.UsefulLifeMonths)
	}
	method := params.Method
	if method == "" {
		method = model.MethodStraightLine
	}
	if method != model.MethodStraightLine {
		return model.Asset{}, model.Validationf("method", "unsupported depreciation method %q", method)
	}
	acquisition := params.AcquisitionDate
	if acquisition.IsZero() {
		acquisition = params.InServiceDate
	}

	asset := model.Asset{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		Name:             params.Name,
		Category:         params.Category,
		UniqueKey:        params.UniqueKey,
		AcquisitionDate:  acquisition,
		InServiceDate:    params.InServiceDate,
		Cost:             money.Round(params.Cost),
		ResidualValue:    money.Round(params.ResidualValue),
		Method:           method,
		UsefulLifeMonths: params.UsefulLifeMonths,
		Status:           model.AssetActive,
	}

	_, err := e.db.SQL().ExecContext(ctx, `
		INSERT INTO assets (id, tenant_id, name, category, unique_key, acquisition_date,
			in_service_date, cost, residual_value, method, useful_life_months, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, asset.ID, asset.TenantID, asset.Name, asset.Category, asset.UniqueKey,
		asset.AcquisitionDate.Format(sqlite.DateFormat), asset.InServiceDate.Format(sqlite.DateFormat),
		asset.Cost.StringFixed(2), asset.ResidualValue.StringFixed(2),
		string(asset.Method), asset.UsefulLifeMonths, string(asset.Status))
	if sqlite.IsUniqueViolation(err) {
		return model.Asset{}, fmt.Errorf("asset %q: %w", params.UniqueKey, model.ErrAssetExists)
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("registering asset: %w", err)
	}
	return asset, nil
}

// Get returns a tenant's asset by unique key.
func (e *Engine) Get(ctx context.Context, tenantID, uniqueKey string) (model.Asset, error) {
	return e.scanAsset(e.db.SQL().QueryRowContext(ctx, `
		SELECT id, tenant_id, name, category, unique_key, acquisition_date, in_service_date,
		       cost, residual_value, method, useful_life_months, status
		FROM assets WHERE tenant_id = ? AND unique_key = ?
	`, tenantID, uniqueKey))
}

// List returns a tenant's assets ordered by unique key.
func (e *Engine) List(ctx context.Context, tenantID string) ([]model.Asset, error) {
	rows, err := e.db.SQL().QueryContext(ctx, `
		SELECT id, tenant_id, name, category, unique_key, acquisition_date, in_service_date,
		       cost, residual_value, method, useful_life_months, status
		FROM assets WHERE tenant_id = ? ORDER BY unique_key
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
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

// Events returns the posted depreciation events for an asset in period order.
func (e *Engine) Events(ctx context.Context, assetID string) ([]model.DepreciationEvent, error) {
	rows, err := e.db.SQL().QueryContext(ctx, `
		SELECT asset_id, period, amount, transaction_id
		FROM depreciation_events WHERE asset_id = ? ORDER BY period
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("querying depreciation events: %w", err)
	}
	defer rows.Close()

	var result []model.DepreciationEvent
	for rows.Next() {
		var ev model.DepreciationEvent
		var amountStr string
		if err := rows.Scan(&ev.AssetID, &ev.Period, &amountStr, &ev.TransactionID); err != nil {
			return nil, fmt.Errorf("scanning depreciation event: %w", err)
		}
		ev.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing event amount: %w", err)
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

func (e *Engine) setStatus(ctx context.Context, assetID string, status model.AssetStatus) error {
	_, err := e.db.SQL().ExecContext(ctx, `UPDATE assets SET status = ? WHERE id = ?`, string(status), assetID)
	if err != nil {
		return fmt.Errorf("updating asset status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (e *Engine) scanAsset(row *sql.Row) (model.Asset, error) {
	a, err := scanAssetFrom(row)
	if err == sql.ErrNoRows {
		return model.Asset{}, model.ErrAssetNotFound
	}
	return a, err
}

func (e *Engine) scanAssetRows(rows *sql.Rows) (model.Asset, error) {
	return scanAssetFrom(rows)
}

func scanAssetFrom(row rowScanner) (model.Asset, error) {
	var a model.Asset
	var acqStr, svcStr, costStr, residualStr, method, status string
	err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.Category, &a.UniqueKey,
		&acqStr, &svcStr, &costStr, &residualStr, &method, &a.UsefulLifeMonths, &status)
	if err != nil {
		return model.Asset{}, err
	}
	a.AcquisitionDate, err = parseDate(acqStr)
	if err != nil {
		return model.Asset{}, err
	}
	a.InServiceDate, err = parseDate(svcStr)
	if err != nil {
		return model.Asset{}, err
	}
	a.Cost, err = decimal.NewFromString(costStr)
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing asset cost: %w", err)
	}
	a.ResidualValue, err = decimal.NewFromString(residualStr)
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing asset residual: %w", err)
	}
	a.Method = model.DepreciationMethod(method)
	a.Status = model.AssetStatus(status)
	return a, nil
}
