package client

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"
	"wallet_state/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	wallet   = "0x1111111111111111111111111111111111111111"
	usdc     = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	txHash   = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	badToken = "0x2222222222222222222222222222222222222222"
)

func fakeNode(t *testing.T) *httptest.Server {
	t.Helper()

	balanceWord, err := erc20.ABI().Methods["balanceOf"].Outputs.Pack(big.NewInt(500))
	require.NoError(t, err)
	amountWord, err := erc20.ABI().Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(42))
	require.NoError(t, err)

	answer := func(req rpcRequest) rpcResponse {
		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
		switch req.Method {
		case "eth_getBalance":
			resp.Result = "0x64"
		case "eth_call":
			if strings.Contains(strings.ToLower(string(req.Params[0])), strings.ToLower(badToken)) {
				resp.Error = &rpcError{Code: -32000, Message: "execution reverted"}
			} else {
				resp.Result = hexutil.Encode(balanceWord)
			}
		case "eth_blockNumber":
			resp.Result = "0x10"
		case "eth_getLogs":
			resp.Result = []map[string]any{{
				"address":          usdc,
				"topics":           []string{erc20.TransferEventID().Hex(), common.BytesToHash(common.HexToAddress(wallet).Bytes()).Hex(), common.Hash{}.Hex()},
				"data":             hexutil.Encode(amountWord),
				"blockNumber":      "0x5",
				"transactionHash":  txHash,
				"transactionIndex": "0x0",
				"blockHash":        common.Hash{}.Hex(),
				"logIndex":         "0x1",
				"removed":          false,
			}}
		default:
			resp.Error = &rpcError{Code: -32601, Message: "method not found"}
		}
		return resp
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")

		if strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
			var batch []rpcRequest
			require.NoError(t, json.Unmarshal(body, &batch))
			out := make([]rpcResponse, len(batch))
			for i, req := range batch {
				out[i] = answer(req)
			}
			require.NoError(t, json.NewEncoder(w).Encode(out))
			return
		}
		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.NoError(t, json.NewEncoder(w).Encode(answer(req)))
	}))
}

func newTestClient(t *testing.T) *EVMClient {
	t.Helper()
	node := fakeNode(t)
	t.Cleanup(node.Close)

	netDef := entity.NetworkDefinition{ChainID: 1, Name: "Ethereum", Identifier: "ethereum", NativeSymbol: "ETH", PrimaryRPCURL: node.URL}
	c, err := NewEVMClient(netDef, zap.NewNop(), time.Second, 5*time.Second, rate.NewLimiter(rate.Inf, 1))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGetBalances(t *testing.T) {
	c := newTestClient(t)

	results, err := c.GetBalances(t.Context(), []entity.BalanceRequestItem{
		{ID: "native", Type: entity.NativeBalanceRequest, WalletAddress: wallet, Asset: entity.Asset{Symbol: "ETH", Decimals: 18}},
		{ID: "usdc", Type: entity.TokenBalanceRequest, WalletAddress: wallet, Asset: entity.Asset{Symbol: "USDC", Decimals: 6, ContractAddress: usdc}},
		{ID: "bad", Type: entity.TokenBalanceRequest, WalletAddress: wallet, Asset: entity.Asset{Symbol: "BAD", Decimals: 18, ContractAddress: badToken}},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].IsNative)
	require.NoError(t, results[0].Error)
	assert.Equal(t, int64(100), results[0].Balance.Int64())

	require.NoError(t, results[1].Error)
	assert.Equal(t, int64(500), results[1].Balance.Int64())
	assert.Equal(t, "USDC", results[1].Asset.Symbol)

	assert.Error(t, results[2].Error)
	assert.Nil(t, results[2].Balance)
}

func TestGetBalancesEmpty(t *testing.T) {
	c := newTestClient(t)
	results, err := c.GetBalances(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLatestBlock(t *testing.T) {
	c := newTestClient(t)
	n, err := c.LatestBlock(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestTransferLogsDeduplicates(t *testing.T) {
	c := newTestClient(t)

	logs, err := c.TransferLogs(t.Context(), wallet, 0, 16)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	records := erc20.ParseTransfers(logs)
	require.Len(t, records, 1)
	assert.Equal(t, strings.ToLower(wallet), records[0].SenderAddress)
	assert.Equal(t, int64(42), records[0].Amount.Int64())
}

func TestProviderCachesClients(t *testing.T) {
	node := fakeNode(t)
	defer node.Close()

	p := NewEVMClientProvider(configloader.Default(), zap.NewNop())
	netDef := entity.NetworkDefinition{ChainID: 1, Name: "Ethereum", Identifier: "ethereum", PrimaryRPCURL: node.URL}

	first, err := p.GetClient(netDef)
	require.NoError(t, err)
	second, err := p.GetClient(netDef)
	require.NoError(t, err)
	assert.Same(t, first, second)
	p.(*evmClientProvider).Close()

	_, err = p.GetClient(entity.NetworkDefinition{ChainID: 2, Name: "Nowhere"})
	assert.Error(t, err)
}
