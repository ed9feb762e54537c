package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the depreciation lifecycle state of a fixed asset.
type AssetStatus string

const (
	AssetActive           AssetStatus = "ACTIVE"
	AssetFullyDepreciated AssetStatus = "FULLY_DEPRECIATED"
	AssetDisposed         AssetStatus = "DISPOSED" // terminal
)

// DepreciationMethod names the depreciation schedule algorithm.
type DepreciationMethod string

// MethodStraightLine recognizes equal expense each period over the useful life.
const MethodStraightLine DepreciationMethod = "SL"

// Asset is a fixed asset subject to periodic depreciation. UniqueKey is unique
// per tenant only.
type Asset struct {
	ID               string // uuid
	TenantID         string
	Name             string
	Category         string
	UniqueKey        string
	AcquisitionDate  time.Time
	InServiceDate    time.Time
	Cost             decimal.Decimal
	ResidualValue    decimal.Decimal
	Method           DepreciationMethod
	UsefulLifeMonths int
	Status           AssetStatus
}

// DepreciationEvent records one posted depreciation period for an asset.
// At most one event exists per (asset, period).
type DepreciationEvent struct {
	AssetID       string
	Period        string // "YYYY-MM"
	Amount        decimal.Decimal
	TransactionID string
}
