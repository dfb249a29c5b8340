package entity

import (
	"math/big"
	"time"
)

// DataSource names where a balance snapshot came from.
type DataSource string

const (
	// DataSourceLocal marks balances read directly from a node over JSON-RPC.
	DataSourceLocal DataSource = "local"
	// DataSourceAlchemy marks balances read through an indexing provider.
	DataSourceAlchemy DataSource = "alchemy"
	// DataSourceCustom marks balances supplied by a caller of the HTTP API.
	DataSourceCustom DataSource = "custom"
)

// AssetAmount is an amount of one asset. Amount is never a float approximation.
type AssetAmount struct {
	Asset  Asset    `json:"asset"`
	Amount *big.Int `json:"amount"`
}

// AssetBalance represents the amount of one asset held by one address on one network.
type AssetBalance struct {
	Address     string            `json:"address"`
	Network     NetworkDefinition `json:"network"`
	AssetAmount AssetAmount       `json:"assetAmount"`
	RetrievedAt time.Time         `json:"retrievedAt"`
	DataSource  DataSource        `json:"dataSource"`
}

// Symbol returns the aggregation key of the balance.
func (b AssetBalance) Symbol() string {
	return b.AssetAmount.Asset.Symbol
}
