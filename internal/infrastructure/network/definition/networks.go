package networkdefinition

import (
	"sort"

	"wallet_state/internal/domain/entity"
)

func evm(chainID uint64, name, identifier, nativeSymbol, explorer, wrapped string, rpcURLs ...string) entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:                   chainID,
		Name:                      name,
		Identifier:                identifier,
		NativeSymbol:              nativeSymbol,
		Decimals:                  18,
		PrimaryRPCURL:             rpcURLs[0],
		FallbackRPCURLs:           rpcURLs[1:],
		BlockExplorerURL:          explorer,
		DEXScreenerChainID:        identifier,
		WrappedNativeTokenAddress: wrapped,
	}
}

// Known networks. The DEXScreener chain id matches the identifier for all of them.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = evm(1, "Ethereum Mainnet", "ethereum", "ETH", "https://etherscan.io",
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"https://ethereum-rpc.publicnode.com", "https://rpc.ankr.com/eth")
	BSC = evm(56, "BNB Smart Chain", "bsc", "BNB", "https://bscscan.com",
		"0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
		"https://1rpc.io/bnb", "https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com")
	Polygon = evm(137, "Polygon PoS", "polygon", "POL", "https://polygonscan.com",
		"0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
		"https://polygon-rpc.com/", "https://polygon.publicnode.com")
	Arbitrum = evm(42161, "Arbitrum One", "arbitrum", "ETH", "https://arbiscan.io",
		"0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
		"https://arb1.arbitrum.io/rpc", "https://arbitrum.publicnode.com")
	Avalanche = evm(43114, "Avalanche C-Chain", "avalanche", "AVAX", "https://snowtrace.io",
		"0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
		"https://api.avax.network/ext/bc/C/rpc", "https://rpc.ankr.com/avalanche")
	Base = evm(8453, "Base Mainnet", "base", "ETH", "https://basescan.org",
		"0x4200000000000000000000000000000000000006",
		"https://1rpc.io/base", "https://base.publicnode.com")
	Optimism = evm(10, "OP Mainnet", "optimism", "ETH", "https://optimistic.etherscan.io",
		"0x4200000000000000000000000000000000000006",
		"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism")
	Linea = evm(59144, "Linea", "linea", "ETH", "https://lineascan.build",
		"0xe5D7C2a44FfDDf6b295A15c148167daaAf5Cf34f",
		"https://rpc.linea.build")
	Scroll = evm(534352, "Scroll", "scroll", "ETH", "https://scrollscan.com",
		"0x5300000000000000000000000000000000000004",
		"https://rpc.scroll.io")
	ZkSync = evm(324, "zkSync Era Mainnet", "zksync", "ETH", "https://explorer.zksync.io",
		"0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91",
		"https://mainnet.era.zksync.io")
)

var allKnownDefinitions = indexByIdentifier(Ethereum, BSC, Polygon, Arbitrum, Avalanche, Base, Optimism, Linea, Scroll, ZkSync)

func indexByIdentifier(defs ...entity.NetworkDefinition) map[string]entity.NetworkDefinition {
	out := make(map[string]entity.NetworkDefinition, len(defs))
	for _, def := range defs {
		out[def.Identifier] = def
	}
	return out
}

// KnownIdentifiers lists every built-in network identifier in sorted order.
func KnownIdentifiers() []string {
	ids := make([]string, 0, len(allKnownDefinitions))
	for id := range allKnownDefinitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns a built-in network definition by identifier.
func Lookup(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := allKnownDefinitions[identifier]
	return def, ok
}
