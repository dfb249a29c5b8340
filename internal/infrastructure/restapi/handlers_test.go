package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/store"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ethereum = entity.NetworkDefinition{ChainID: 1, Name: "Ethereum Mainnet", Identifier: "ethereum", NativeSymbol: "ETH", Decimals: 18}

type oneNetwork struct{}

func (oneNetwork) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{ethereum}
}

func (oneNetwork) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	return ethereum, identifier == ethereum.Identifier
}

func (oneNetwork) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	return ethereum, chainID == ethereum.ChainID
}

type staticPrices map[string]float64

func (p staticPrices) PriceBySymbol(symbol string) (float64, bool) {
	v, ok := p[symbol]
	return v, ok
}

type stubActivity struct {
	items     []entity.ActivityItem
	refreshed []string
}

func (s *stubActivity) Refresh(_ context.Context, address string) ([]entity.ActivityItem, error) {
	s.refreshed = append(s.refreshed, address)
	return s.items, nil
}

func (s *stubActivity) History(string) []entity.ActivityItem { return nil }

type stubPoller []entity.PollError

func (p stubPoller) LastErrors() []entity.PollError { return p }

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

type testAPI struct {
	router    *gin.Engine
	directory *store.Store
	activity  *stubActivity
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	directory := store.New(accounts.NewState(accounts.NewIdentityAllocator()), zap.NewNop())
	t.Cleanup(directory.Close)
	activity := &stubActivity{}

	h := NewHandler(Deps{
		Directory: directory,
		Networks:  oneNetwork{},
		Prices:    staticPrices{"ETH": 2000},
		Activity:  activity,
		Poller:    stubPoller{{WalletAddress: addr(9), NetworkName: "Ethereum Mainnet", Message: "timeout"}},
		Logger:    zap.NewNop(),
	})
	return &testAPI{router: NewRouter(h, zap.NewNop()), directory: directory, activity: activity}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func ethBalance(address, amount string) map[string]any {
	return map[string]any{"balances": []BalanceInput{{
		Address: address, Network: "ethereum", Symbol: "ETH", Decimals: 18, Amount: amount,
	}}}
}

func TestLoadAccountThenBalance(t *testing.T) {
	api := newTestAPI(t)
	mixed := "0xABCDEF0000000000000000000000000000000001"
	lower := "0xabcdef0000000000000000000000000000000001"

	w := api.do(t, http.MethodPost, "/api/v1/accounts", map[string]string{"address": mixed})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/accounts/"+lower, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "loading", decode[map[string]string](t, w)["status"])

	w = api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(mixed, "1500000000000000000"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/v1/accounts/"+mixed, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[AccountView](t, w)
	assert.Equal(t, lower, view.Address)
	assert.NotEmpty(t, view.DefaultName)
	assert.Equal(t, view.DefaultName, view.DisplayName)
	require.Len(t, view.Balances, 1)
	assert.Equal(t, "1500000000000000000", view.Balances[0].Amount)
	assert.Equal(t, "1.5", view.Balances[0].Formatted)
	assert.Equal(t, entity.DataSourceCustom, view.Balances[0].DataSource)

	w = api.do(t, http.MethodGet, "/api/v1/accounts", nil)
	list := decode[struct {
		Accounts []AccountView `json:"accounts"`
		Loading  []string      `json:"loading"`
	}](t, w)
	assert.Len(t, list.Accounts, 1)
	assert.Empty(t, list.Loading)
}

func TestInvalidInputIsRejected(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/accounts", map[string]string{"address": "0x123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/accounts/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(addr(1), "1.5"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := map[string]any{"balances": []BalanceInput{{Address: addr(1), Network: "solana", Symbol: "SOL", Amount: "1"}}}
	w = api.do(t, http.MethodPost, "/api/v1/balances", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, api.directory.Snapshot().Len())
}

func TestPortfolioCombinesAccounts(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(addr(1), "1000000000000000000"))
	api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(addr(2), "500000000000000000"))
	api.do(t, http.MethodPost, "/api/v1/accounts", map[string]string{"address": addr(3)})

	w := api.do(t, http.MethodGet, "/api/v1/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[PortfolioView](t, w)

	assert.InDelta(t, 3000.0, view.TotalMainCurrencyValue, 1e-9)
	require.Len(t, view.Assets, 1)
	assert.Equal(t, "1.5", view.Assets[0].Formatted)
	assert.Equal(t, 2, view.Accounts)
	assert.Equal(t, 1, view.Loading)
}

func TestPortfolioDropsDeletedAccount(t *testing.T) {
	api := newTestAPI(t)

	api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(addr(1), "1000000000000000000"))
	api.do(t, http.MethodPost, "/api/v1/balances", ethBalance(addr(2), "500000000000000000"))
	w := api.do(t, http.MethodDelete, "/api/v1/accounts/"+addr(2), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[PortfolioView](t, w)

	require.Len(t, view.Assets, 1)
	assert.Equal(t, "1", view.Assets[0].Formatted)
	assert.InDelta(t, 2000.0, view.TotalMainCurrencyValue, 1e-9)
	assert.Equal(t, 1, view.Accounts)
}

func TestENSUpdates(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPut, "/api/v1/accounts/"+addr(1)+"/ens/name", map[string]string{"network": "ethereum", "name": "alice.eth"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, api.directory.Snapshot().Len())

	api.do(t, http.MethodPost, "/api/v1/accounts", map[string]string{"address": addr(1)})
	w = api.do(t, http.MethodPut, "/api/v1/accounts/"+addr(1)+"/ens/name", map[string]string{"network": "ethereum", "name": "alice.eth"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice.eth", decode[AccountView](t, w).DisplayName)

	w = api.do(t, http.MethodPut, "/api/v1/accounts/"+addr(1)+"/ens/avatar", map[string]string{"network": "ethereum", "avatarUrl": "https://example.org/a.png"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[AccountView](t, w)
	assert.Equal(t, "alice.eth", view.ENS.Name)
	assert.Equal(t, "https://example.org/a.png", view.ENS.AvatarURL)
}

func TestDeleteAccount(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/v1/accounts", map[string]string{"address": addr(1)})

	w := api.do(t, http.MethodDelete, "/api/v1/accounts/"+addr(1), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/accounts/"+addr(1), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecodeLogs(t *testing.T) {
	api := newTestAPI(t)
	data, err := erc20.ABI().Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(1000))
	require.NoError(t, err)

	valid := entity.RawLog{
		ContractAddress: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		Topics: []common.Hash{
			erc20.TransferEventID(),
			common.HexToHash("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
			common.HexToHash("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"),
		},
		Data: hexutil.Encode(data),
	}
	truncated := valid
	truncated.Data = hexutil.Encode(data[:16])
	notHex := valid
	notHex.Data = "0xnothex"

	w := api.do(t, http.MethodPost, "/api/v1/decode/logs", map[string]any{"logs": []entity.RawLog{valid, truncated, notHex}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Transfers []TransferView `json:"transfers"`
		Dropped   int            `json:"dropped"`
	}](t, w)

	require.Len(t, resp.Transfers, 1)
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", resp.Transfers[0].SenderAddress)
	assert.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", resp.Transfers[0].RecipientAddress)
	assert.Equal(t, "1000", resp.Transfers[0].Amount)
	assert.Equal(t, 2, resp.Dropped)
}

func TestDecodeCall(t *testing.T) {
	api := newTestAPI(t)
	data, err := erc20.ABI().Pack("approve", common.HexToAddress(addr(7)), big.NewInt(5))
	require.NoError(t, err)

	w := api.do(t, http.MethodPost, "/api/v1/decode/call", map[string]string{"data": hexutil.Encode(data)})
	require.Equal(t, http.StatusOK, w.Code)
	desc := decode[entity.TransactionDescription](t, w)
	assert.Equal(t, "approve", desc.Name)
	assert.Equal(t, addr(7), desc.Args["spender"])

	w = api.do(t, http.MethodPost, "/api/v1/decode/call", map[string]string{"data": "0xdeadbeef"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/decode/call", map[string]string{"data": "zz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityAndPollErrors(t *testing.T) {
	api := newTestAPI(t)
	api.activity.items = []entity.ActivityItem{{Network: "ethereum", TxHash: "0x01", BlockNumber: 7}}

	w := api.do(t, http.MethodGet, "/api/v1/accounts/"+addr(1)+"/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, api.activity.refreshed)

	w = api.do(t, http.MethodGet, "/api/v1/accounts/"+addr(1)+"/activity?refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{addr(1)}, api.activity.refreshed)
	assert.Contains(t, w.Body.String(), `"blockNumber":7`)

	w = api.do(t, http.MethodGet, "/api/v1/poll/errors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "timeout")
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPprofIsOptIn(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/debug/pprof/cmdline", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	RegisterPprof(api.router)
	w = api.do(t, http.MethodGet, "/debug/pprof/cmdline", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
