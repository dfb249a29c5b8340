package port

import (
	"context"

	"wallet_state/internal/domain/entity"

	"github.com/ethereum/go-ethereum/core/types"
)

// BlockchainClient defines the interface for interacting with a blockchain network.
type BlockchainClient interface {
	// GetBalances fetches native and token balances in one JSON-RPC batch.
	// Per-item failures are reported in BalanceResultItem.Error.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// LatestBlock returns the current head block number.
	LatestBlock(ctx context.Context) (uint64, error)

	// TransferLogs returns ERC20 Transfer logs sent from or to address in the block range.
	TransferLogs(ctx context.Context, address string, fromBlock, toBlock uint64) ([]types.Log, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns the active network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns an active network definition by its identifier.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)

	// GetNetworkDefinitionByChainID returns a known network definition by chain ID.
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
