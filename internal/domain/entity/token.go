package entity

// TokenInfo holds the details of a specific token.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Asset identifies a fungible asset. Symbol is the aggregation key.
type Asset struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name,omitempty"`
	Decimals        uint8  `json:"decimals"`
	ContractAddress string `json:"contractAddress,omitempty"`
}

// AssetFromToken builds the asset descriptor for an ERC-20 token.
func AssetFromToken(t TokenInfo) Asset {
	return Asset{
		Symbol:          t.Symbol,
		Name:            t.Name,
		Decimals:        t.Decimals,
		ContractAddress: t.Address,
	}
}

// NativeAsset builds the asset descriptor for a network's base currency.
func NativeAsset(n NetworkDefinition) Asset {
	decimals := n.Decimals
	if decimals == 0 {
		decimals = 18
	}
	return Asset{
		Symbol:   n.NativeSymbol,
		Name:     n.NativeSymbol,
		Decimals: uint8(decimals),
	}
}
