package service

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
	dex_types "wallet_state/internal/entity"

	"github.com/ethereum/go-ethereum/core/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

var (
	ethereum = entity.NetworkDefinition{
		ChainID: 1, Name: "Ethereum Mainnet", Identifier: "ethereum", NativeSymbol: "ETH", Decimals: 18,
		DEXScreenerChainID: "ethereum", WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	}
	base = entity.NetworkDefinition{
		ChainID: 8453, Name: "Base", Identifier: "base", NativeSymbol: "ETH", Decimals: 18,
		DEXScreenerChainID: "base",
	}
	usdcToken = entity.TokenInfo{ChainID: 1, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Name: "USD Coin", Symbol: "USDC", Decimals: 6}
	linkToken = entity.TokenInfo{ChainID: 1, Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Name: "Chainlink", Symbol: "LINK", Decimals: 18}
)

type fakeNetworks struct {
	defs []entity.NetworkDefinition
}

func (f fakeNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition { return f.defs }

func (f fakeNetworks) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	for _, d := range f.defs {
		if d.Identifier == identifier {
			return d, true
		}
	}
	return entity.NetworkDefinition{}, false
}

func (f fakeNetworks) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	for _, d := range f.defs {
		if d.ChainID == chainID {
			return d, true
		}
	}
	return entity.NetworkDefinition{}, false
}

type fakeTokens map[uint64][]entity.TokenInfo

func (f fakeTokens) GetTokensByNetwork([]entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error) {
	return f, nil
}

// fakeChain answers balance requests from a fixed table keyed by symbol.
type fakeChain struct {
	def      entity.NetworkDefinition
	balances map[string]int64
	failing  map[string]bool
	head     uint64
	logs     []types.Log
	logsErr  error
	// onBalances runs before each balance batch is answered.
	onBalances func()

	mu      sync.Mutex
	batches [][]entity.BalanceRequestItem
}

func (c *fakeChain) GetBalances(_ context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	c.mu.Lock()
	c.batches = append(c.batches, requests)
	c.mu.Unlock()
	if c.onBalances != nil {
		c.onBalances()
	}

	results := make([]entity.BalanceResultItem, 0, len(requests))
	for _, req := range requests {
		res := entity.BalanceResultItem{
			RequestID:     req.ID,
			WalletAddress: req.WalletAddress,
			Asset:         req.Asset,
			IsNative:      req.Type == entity.NativeBalanceRequest,
		}
		if c.failing[req.Asset.Symbol] {
			res.Error = errors.New("execution reverted")
		} else {
			res.Balance = big.NewInt(c.balances[req.Asset.Symbol])
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *fakeChain) LatestBlock(context.Context) (uint64, error) { return c.head, nil }

func (c *fakeChain) TransferLogs(context.Context, string, uint64, uint64) ([]types.Log, error) {
	return c.logs, c.logsErr
}

func (c *fakeChain) Definition() entity.NetworkDefinition { return c.def }

func (c *fakeChain) batchSizes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sizes := make([]int, len(c.batches))
	for i, b := range c.batches {
		sizes[i] = len(b)
	}
	return sizes
}

type fakeClients map[uint64]*fakeChain

func (f fakeClients) GetClient(def entity.NetworkDefinition) (port.BlockchainClient, error) {
	c, ok := f[def.ChainID]
	if !ok {
		return nil, errors.New("no rpc configured")
	}
	return c, nil
}

type fakeDEXScreener struct {
	pairs map[string][]dex_types.PairData
	fail  map[string]bool

	mu    sync.Mutex
	calls int
}

func (f *fakeDEXScreener) GetTokenPairsByAddresses(_ context.Context, chainID string, _ []string) ([]dex_types.PairData, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[chainID] {
		return nil, errors.New("status 429")
	}
	return f.pairs[chainID], nil
}
