package entity

// CombinedPortfolio is the aggregate of all tracked accounts, one entry per asset symbol.
type CombinedPortfolio struct {
	TotalMainCurrencyValue float64       `json:"totalMainCurrencyValue"`
	Assets                 []AssetAmount `json:"assets"`
}
