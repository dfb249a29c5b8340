package entity

// NetworkDefinition holds the configuration for a specific EVM network.
// It doubles as the network descriptor attached to every account record and balance.
type NetworkDefinition struct {
	ChainID                   uint64   `json:"chainId" yaml:"chainId"`
	Name                      string   `json:"name" yaml:"name"`
	Identifier                string   `json:"identifier" yaml:"identifier"`
	NativeSymbol              string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals                  int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL             string   `json:"-" yaml:"primaryRpcUrl"`
	FallbackRPCURLs           []string `json:"-" yaml:"fallbackRpcUrls"`
	BlockExplorerURL          string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID        string   `json:"-" yaml:"dexScreenerChainId"`
	WrappedNativeTokenAddress string   `json:"-" yaml:"wrappedNativeTokenAddress"`
}

// SameChain reports whether both descriptors point at the same chain.
func (n NetworkDefinition) SameChain(other NetworkDefinition) bool {
	return n.ChainID == other.ChainID
}
