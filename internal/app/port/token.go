package port

import (
	"context"

	"wallet_state/internal/domain/entity"
)

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetTokensByNetwork returns the token list of each active network keyed by chain ID.
	GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error)
}

// TokenPriceService caches main-currency prices of tracked assets.
type TokenPriceService interface {
	LoadAndCacheTokenPrices(ctx context.Context) error
	GetPriceUSD(dexScreenerChainID string, tokenAddress string) (float64, bool)
	// PriceBySymbol returns the cached price of an asset symbol across all networks.
	PriceBySymbol(symbol string) (float64, bool)
}
