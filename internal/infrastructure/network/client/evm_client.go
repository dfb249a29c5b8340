package client

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"
	"wallet_state/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// EVMClient implements port.BlockchainClient for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// NewEVMClient dials the primary RPC URL of netDef, then each fallback in order.
// A nil limiter disables rate limiting.
func NewEVMClient(netDef entity.NetworkDefinition, logger *zap.Logger, connectionTimeout, rpcCallTimeout time.Duration, limiter *rate.Limiter) (*EVMClient, error) {
	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{
				ethClient:      client,
				netDef:         netDef,
				rpcCallTimeout: rpcCallTimeout,
				limiter:        limiter,
				logger:         logger.Named("EVMClient").With(zap.String("network", netDef.Identifier)),
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URL configured")
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

func (c *EVMClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// GetBalances fetches multiple balances using one JSON-RPC batch request.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	balanceOf := erc20.ABI().Methods["balanceOf"]
	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			Asset:         reqItem.Asset,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			callData, err := erc20.ABI().Pack("balanceOf", common.HexToAddress(reqItem.WalletAddress))
			if err != nil {
				results[i].Error = fmt.Errorf("failed to pack balanceOf for %s: %w", reqItem.Asset.Symbol, err)
				batchElems[i] = rpc.BatchElem{Method: "eth_chainId", Result: new(hexutil.Big)}
				continue
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{map[string]interface{}{
					"to":   common.HexToAddress(reqItem.Asset.ContractAddress),
					"data": hexutil.Bytes(callData),
				}, "latest"},
				Result: new(hexutil.Bytes),
			}
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.Asset.Symbol)
			batchElems[i] = rpc.BatchElem{Method: "eth_chainId", Result: new(hexutil.Big)}
		}
	}

	if err := c.wait(ctx); err != nil {
		return results, err
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	start := time.Now()
	err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems)
	metrics.RPCBatchDuration.WithLabelValues(c.netDef.Identifier).Observe(time.Since(start).Seconds())
	if err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for i, elem := range batchElems {
		if results[i].Error != nil {
			continue
		}
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s (wallet %s): %w", requests[i].Asset.Symbol, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			result, ok := elem.Result.(*hexutil.Big)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s", requests[i].Asset.Symbol)
				continue
			}
			results[i].Balance = new(big.Int).Set((*big.Int)(result))
		case entity.TokenBalanceRequest:
			result, ok := elem.Result.(*hexutil.Bytes)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode token balance for %s", requests[i].Asset.Symbol)
				continue
			}
			if len(*result) == 0 {
				results[i].Balance = big.NewInt(0)
				continue
			}
			unpacked, err := balanceOf.Outputs.Unpack(*result)
			if err != nil || len(unpacked) == 0 {
				results[i].Error = fmt.Errorf("failed to unpack balanceOf result for %s: raw %s", requests[i].Asset.Symbol, hexutil.Encode(*result))
				continue
			}
			balance, ok := unpacked[0].(*big.Int)
			if !ok {
				results[i].Error = fmt.Errorf("unexpected balanceOf result type %T for %s", unpacked[0], requests[i].Asset.Symbol)
				continue
			}
			results[i].Balance = balance
		}
	}
	return results, nil
}

// LatestBlock returns the head block number.
func (c *EVMClient) LatestBlock(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	n, err := c.ethClient.BlockNumber(rpcCallCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch block number on %s: %w", c.netDef.Identifier, err)
	}
	return n, nil
}

// TransferLogs returns Transfer logs where address is the sender or the
// recipient, ordered by block and log index.
func (c *EVMClient) TransferLogs(ctx context.Context, address string, fromBlock, toBlock uint64) ([]types.Log, error) {
	topic := common.BytesToHash(common.HexToAddress(address).Bytes())
	event := erc20.TransferEventID()

	queries := []ethereum.FilterQuery{
		{FromBlock: new(big.Int).SetUint64(fromBlock), ToBlock: new(big.Int).SetUint64(toBlock), Topics: [][]common.Hash{{event}, {topic}}},
		{FromBlock: new(big.Int).SetUint64(fromBlock), ToBlock: new(big.Int).SetUint64(toBlock), Topics: [][]common.Hash{{event}, nil, {topic}}},
	}

	type logKey struct {
		tx    common.Hash
		index uint
	}
	seen := make(map[logKey]struct{})
	var out []types.Log

	for _, q := range queries {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
		logs, err := c.ethClient.FilterLogs(rpcCallCtx, q)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to filter Transfer logs on %s: %w", c.netDef.Identifier, err)
		}
		for _, l := range logs {
			key := logKey{tx: l.TxHash, index: l.Index}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, l)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].Index < out[j].Index
	})
	c.logger.Debug("Fetched Transfer logs", zap.String("address", address), zap.Int("count", len(out)))
	return out, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
